package engine

import (
	"context"
	"testing"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/game/tictactoe"
	"gamesearch/scoring"
	"gamesearch/searcher"
	"gamesearch/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// nilAgent never finds a move
type nilAgent struct{}

func (nilAgent) FindMove(context.Context, game.State) (game.Move, metrics.SearchMetric) {
	return nil, metrics.SearchMetric{}
}

func perfect() agent.Agent {
	return agent.NewEvaluationAgent(searcher.NewExpectimax(scoring.NewOutcome(nil, nil, scoring.TieFirst),
		searcher.WithMaxPlies(9),
		searcher.WithLogger(zerolog.Nop())))
}

func TestLocalEngine(t *testing.T) {
	t.Run("perfect players draw", func(t *testing.T) {
		e := NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{
			tictactoe.X: perfect(),
			tictactoe.O: perfect(),
		}, WithLogger(zerolog.Nop()))

		winners, gameMetric, moveMetrics := e.Run(context.Background())

		require.Empty(t, winners)
		require.Equal(t, 9, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 9)
		require.Equal(t, tictactoe.X, gameMetric.StartingPlayer)
		require.Equal(t, tictactoe.O, moveMetrics[1].Player)
	})

	t.Run("perfect player never loses to random", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			e := NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{
				tictactoe.X: perfect(),
				tictactoe.O: agent.NewRandomAgent(),
			}, WithLogger(zerolog.Nop()))

			winners, _, _ := e.Run(context.Background())

			require.NotContains(t, winners, tictactoe.O)
		}
	})

	t.Run("invalid moves fall back to the first legal move", func(t *testing.T) {
		e := NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{
			tictactoe.X: nilAgent{},
			tictactoe.O: nilAgent{},
		}, WithLogger(zerolog.Nop()))

		winners, gameMetric, _ := e.Run(context.Background())

		// X takes 0, 2, 4, 6 in order and completes the 2-4-6 diagonal
		require.Equal(t, []string{tictactoe.X}, winners)
		require.Equal(t, 7, gameMetric.TotalMoves)
		require.Equal(t, "X", gameMetric.Winner)
	})

	t.Run("max moves stop the game", func(t *testing.T) {
		e := NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{
			tictactoe.X: agent.NewRandomAgent(),
			tictactoe.O: agent.NewRandomAgent(),
		}, WithMaxMoves(2), WithLogger(zerolog.Nop()))

		winners, gameMetric, _ := e.Run(context.Background())

		require.Empty(t, winners)
		require.Equal(t, 2, gameMetric.TotalMoves)
	})

	t.Run("missing agents are rejected", func(t *testing.T) {
		require.Panics(t, func() {
			NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{tictactoe.X: nilAgent{}})
		})
	})
}

func TestRunMatches(t *testing.T) {
	t.Run("plays every game", func(t *testing.T) {
		results, err := RunMatches(context.Background(), 6, 2, func(int) Engine {
			return NewLocalEngine(tictactoe.NewBoard(), map[string]agent.Agent{
				tictactoe.X: agent.NewRandomAgent(),
				tictactoe.O: agent.NewRandomAgent(),
			}, WithLogger(zerolog.Nop()))
		})

		require.NoError(t, err)
		require.Len(t, results, 6)
		for i, result := range results {
			require.Equal(t, i+1, result.Game)
			require.GreaterOrEqual(t, result.GameMetric.TotalMoves, 5)
			require.Len(t, result.MoveMetrics, result.GameMetric.TotalMoves)
		}
	})

	t.Run("cancelled context plays nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RunMatches(ctx, 3, 1, func(int) Engine {
			t.Fatal("no engine should be built")
			return nil
		})

		require.ErrorIs(t, err, context.Canceled)
	})
}
