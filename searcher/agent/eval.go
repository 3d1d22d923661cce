package agent

import (
	"context"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/searcher"
)

type evaluationAgent struct {
	search *searcher.Expectimax
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// It always plays the first move of the best line.
func NewEvaluationAgent(search *searcher.Expectimax) Agent {
	return evaluationAgent{search: search}
}

func (a evaluationAgent) FindMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric) {
	mainline, metric := a.search.Search(ctx, state)
	return mainline.Move(), metric
}
