package agent

import (
	"context"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
)

type Agent interface {
	// FindMove returns the move to play and performance metrics (if collected) from the search
	FindMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric)
}
