package experiments

import (
	"context"
	"fmt"

	"gamesearch/experiments/metrics"
	"gamesearch/searcher"
	"gamesearch/tree"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunThroughput searches the game's starting position once per ply cap, each
// time with a fresh tree, and reports the search metrics of every cap.
func RunThroughput(ctx context.Context, gameName string, target int, base metrics.AgentConfig, maxPlies []int) ([]metrics.SearchMetric, error) {
	state, err := NewState(gameName, target)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(base)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf("starting throughput experiment on %s...", gameName)
	results := make([]metrics.SearchMetric, 0, len(maxPlies))
	for _, plies := range maxPlies {
		if plies <= 0 {
			return nil, fmt.Errorf("invalid ply cap %d", plies)
		}
		config := base
		config.MaxPlies = plies
		options := append(NewSearchOptions(config),
			searcher.WithCache(tree.NewMapCache(tree.WithCacheLogger(zerolog.Nop()))),
			searcher.WithLogger(zerolog.Nop()),
			searcher.WithMetrics(),
		)

		_, metric := searcher.NewExpectimax(scorer, options...).Search(ctx, state)
		results = append(results, metric)
		log.Info().
			Int("max_plies", plies).
			Int("nodes", metric.Nodes).
			Int("cache_hits", metric.CacheHits).
			Dur("duration", metric.Duration).
			Msg("measured-throughput")
	}
	return results, nil
}
