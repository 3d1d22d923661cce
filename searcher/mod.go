// Package searcher runs iterative-deepening expectimax over the memoized
// search graph of package tree.
package searcher

import (
	"context"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/tree"
)

// Searcher finds the best known line of play from a state.
type Searcher interface {
	Search(ctx context.Context, state game.State) (*tree.Mainline, metrics.SearchMetric)
}

const (
	DefaultMinPlies = 1
	// Share of system memory the default transposition cache may grow to
	DefaultMemoryFraction = 0.25
)

// PlyListener is notified after every completed deepening iteration.
type PlyListener func(ply int, mainline *tree.Mainline)
