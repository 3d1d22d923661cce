package engine

import (
	"context"

	"gamesearch/experiments/metrics"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till it is decided, no move is left or a max number of moves is reached
	Run(ctx context.Context) (winners []string, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
