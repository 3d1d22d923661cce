package agent

import (
	"context"
	"math"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/searcher"
	"gamesearch/tree"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

type trainingAgent struct {
	search      *searcher.Expectimax
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. It
// samples moves in proportion to their searched scores sharpened by the
// temperature, so lower temperatures play closer to the best line.
func NewTrainingAgent(search *searcher.Expectimax, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		temperature = 1
	}
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return &trainingAgent{
		search:      search,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric) {
	mainline, metric := a.search.Search(ctx, state)
	policy := a.policy(state, mainline)
	if len(policy) == 0 {
		return mainline.Move(), metric
	}
	return policy.Sample(a.rng), metric
}

// policy weighs every searched root move by its score for the mover.
func (a *trainingAgent) policy(state game.State, mainline *tree.Mainline) tree.Strategy {
	player := mainline.Player()
	if player == game.NoPlayer {
		return nil
	}
	exponent := 1.0 / a.temperature
	policy := tree.Strategy{}
	for _, child := range a.search.Tree().GetOrAdd(state).MoveNodes() {
		score, ok := child.Score()[player]
		if !ok || score <= 0 {
			continue
		}
		policy = append(policy, game.NewWeighted(child.Move(), math.Pow(score, exponent)))
	}
	if game.TotalWeight(policy) == 0 {
		return nil
	}
	return policy
}
