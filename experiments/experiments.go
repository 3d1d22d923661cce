package experiments

import (
	"context"
	"fmt"

	"gamesearch/engine"
	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/game/pig"
	"gamesearch/game/tictactoe"
	"gamesearch/scoring"
	"gamesearch/searcher"
	"gamesearch/searcher/agent"
	"gamesearch/tree"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	TicTacToe = "tictactoe"
	Pig       = "pig"
)

var Games = []string{TicTacToe, Pig}

type Experiment struct {
	Name     string
	Game     string
	Target   int // Pig only
	Games    int
	Parallel int
	// Swap the starting seat every other game
	Alternate     bool
	Agents        [2]metrics.AgentConfig
	CacheCapacity int
	TrimPolicy    tree.TrimPolicy
	// CSV records are written below OutputDir unless it is empty
	OutputDir string
}

type Summary struct {
	Games int
	Wins  map[int]int // By AgentConfig.ID
	Draws int
	Dir   string
}

// NewState returns the starting position of the named game.
func NewState(name string, target int) (game.State, error) {
	switch name {
	case TicTacToe:
		return tictactoe.NewBoard(), nil
	case Pig:
		return pig.New(target), nil
	}
	return nil, fmt.Errorf("unknown game %q", name)
}

// NewScorer builds the scorer an agent config asks for.
func NewScorer(config metrics.AgentConfig) (scoring.Scorer, error) {
	ties, ok := scoring.ParseTiePolicy(config.Ties)
	if !ok {
		return nil, fmt.Errorf("unknown tie policy %q", config.Ties)
	}
	var scorer scoring.Scorer = scoring.NewOutcome(nil, nil, ties)
	if config.Decay > 0 {
		scorer = scoring.WithDecay(scorer, config.Decay)
	}
	if config.Misere {
		scorer = scoring.NewMisere(scorer)
	}
	return scorer, nil
}

// NewSearchOptions maps an agent config onto searcher options.
func NewSearchOptions(config metrics.AgentConfig) []searcher.Option {
	options := []searcher.Option{}

	if config.MinPlies > 0 {
		options = append(options, searcher.WithMinPlies(config.MinPlies))
	}
	if config.MaxPlies > 0 {
		options = append(options, searcher.WithMaxPlies(config.MaxPlies))
	}
	if config.MinThink > 0 {
		options = append(options, searcher.WithMinThinkTime(config.MinThink))
	}
	if config.MaxThink > 0 {
		options = append(options, searcher.WithMaxThinkTime(config.MaxThink))
	}
	return options
}

// NewAgent builds an agent with its own search tree.
func NewAgent(config metrics.AgentConfig, cache tree.Cache, logger zerolog.Logger) (agent.Agent, error) {
	if config.Kind == metrics.Random {
		return agent.NewRandomAgent(), nil
	}

	if config.MaxPlies <= 0 && config.MaxThink <= 0 && config.MinThink <= 0 {
		return nil, fmt.Errorf("agent %d needs a ply or think time limit", config.ID)
	}
	scorer, err := NewScorer(config)
	if err != nil {
		return nil, err
	}
	options := append(NewSearchOptions(config),
		searcher.WithCache(cache),
		searcher.WithLogger(logger),
		searcher.WithMetrics(),
	)
	search := searcher.NewExpectimax(scorer, options...)

	switch config.Kind {
	case metrics.Searching, "":
		return agent.NewEvaluationAgent(search), nil
	case metrics.Training:
		return agent.NewTrainingAgent(search, config.Temperature, 0), nil
	}
	return nil, fmt.Errorf("unknown agent kind %q", config.Kind)
}

// Run plays the experiment's games and stores its records.
func Run(ctx context.Context, exp Experiment) (Summary, error) {
	logger := log.Logger.With().Str("experiment", exp.Name).Logger()
	start, err := NewState(exp.Game, exp.Target)
	if err != nil {
		return Summary{}, err
	}
	players := start.Players()
	if len(players) != len(exp.Agents) {
		return Summary{}, fmt.Errorf("%s needs %d players, got %d agents", exp.Game, len(players), len(exp.Agents))
	}

	// seats lists the agent configs in player order for the game
	seats := func(i int) [2]metrics.AgentConfig {
		if exp.Alternate && i%2 == 1 {
			return [2]metrics.AgentConfig{exp.Agents[1], exp.Agents[0]}
		}
		return exp.Agents
	}

	newEngine := func(i int) engine.Engine {
		gameLogger := logger.With().Int("game", i+1).Logger()
		state, _ := NewState(exp.Game, exp.Target)
		agents := make(map[string]agent.Agent, len(players))
		for seat, config := range seats(i) {
			cache := tree.NewMapCache(
				tree.WithCapacity(exp.CacheCapacity),
				tree.WithTrimPolicy(exp.TrimPolicy),
				tree.WithCacheLogger(gameLogger),
			)
			a, err := NewAgent(config, cache, gameLogger)
			if err != nil {
				panic(err)
			}
			agents[players[seat]] = a
		}
		return engine.NewLocalEngine(state, agents, engine.WithLogger(gameLogger))
	}

	// Agent configs are checked up front so engines never fail to build
	for _, config := range exp.Agents {
		if _, err := NewAgent(config, tree.NewMapCache(tree.WithCapacity(tree.MinCapacity)), zerolog.Nop()); err != nil {
			return Summary{}, err
		}
	}

	logger.Info().Msgf("starting %s experiment with %d games of %s...", exp.Name, exp.Games, exp.Game)
	results, err := engine.RunMatches(ctx, exp.Games, exp.Parallel, newEngine)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Games: len(results), Wins: map[int]int{}}
	gameRecords := make([]metrics.GameRecord, 0, len(results))
	moveRecords := []metrics.MoveRecord{}
	for i, result := range results {
		seated := seats(i)
		for _, winner := range result.Winners {
			summary.Wins[seated[lo.IndexOf(players, winner)].ID]++
		}
		if len(result.Winners) == 0 {
			summary.Draws++
		}

		gameRecords = append(gameRecords, metrics.GameRecord{
			ID:         result.Game,
			Agent1:     seated[0].ID,
			Agent2:     seated[1].ID,
			GameMetric: result.GameMetric,
		})
		for _, mm := range result.MoveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       result.Game,
				MoveMetric: mm,
			})
		}
		logger.Info().Msgf("completed game %d of %d with winner: %s", result.Game, len(results), result.GameMetric.Winner)
	}
	logger.Info().Msgf("completed %s experiment", exp.Name)

	if exp.OutputDir == "" {
		return summary, nil
	}
	dir, err := store(exp, gameRecords, moveRecords)
	if err != nil {
		return summary, err
	}
	summary.Dir = dir
	logger.Info().Str("dir", dir).Msg("stored experiment records")
	return summary, nil
}

func store(exp Experiment, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(exp.OutputDir, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(exp.Agents[:]); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	return writer.Dir(), nil
}
