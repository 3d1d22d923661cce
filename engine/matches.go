package engine

import (
	"context"

	"gamesearch/experiments/metrics"

	"golang.org/x/sync/errgroup"
)

type Result struct {
	Game        int
	Winners     []string
	GameMetric  metrics.GameMetric
	MoveMetrics []metrics.MoveMetric
}

// RunMatches plays the given number of games with at most parallel running at
// once. newEngine is called once per game and must return an engine whose
// agents are not shared with any other game, since a search tree serves one
// search at a time.
func RunMatches(ctx context.Context, games, parallel int, newEngine func(game int) Engine) ([]Result, error) {
	results := make([]Result, games)
	group, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}
	for i := 0; i < games; i++ {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			winners, gameMetric, moveMetrics := newEngine(i).Run(ctx)
			results[i] = Result{Game: i + 1, Winners: winners, GameMetric: gameMetric, MoveMetrics: moveMetrics}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
