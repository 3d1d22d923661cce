package agent

import (
	"context"

	"gamesearch/experiments/metrics"
	"gamesearch/game"

	"lukechampine.com/frand"
)

type randomAgent struct{}

// NewRandomAgent returns a baseline agent playing uniformly random legal moves.
func NewRandomAgent() Agent {
	return randomAgent{}
}

func (randomAgent) FindMove(_ context.Context, state game.State) (game.Move, metrics.SearchMetric) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return nil, metrics.SearchMetric{}
	}
	return moves[frand.Intn(len(moves))], metrics.SearchMetric{}
}
