package tree

import (
	"fmt"
	"strings"

	"gamesearch/game"

	"golang.org/x/exp/rand"
)

// Strategy is a weighted set of alternative moves. A single move is a pure
// strategy; several moves form a mixed strategy.
type Strategy []game.Weighted[game.Move]

// Pure plays the move with certainty.
func Pure(move game.Move) Strategy {
	return Strategy{game.NewWeighted(move, 1)}
}

// Uniform mixes the moves with equal weight.
func Uniform(moves ...game.Move) Strategy {
	strategy := make(Strategy, len(moves))
	for i, move := range moves {
		strategy[i] = game.NewWeighted(move, 1)
	}
	return strategy
}

// First returns the first listed move, nil for an empty strategy.
func (s Strategy) First() game.Move {
	if len(s) == 0 {
		return nil
	}
	return s[0].Value()
}

func (s Strategy) IsMixed() bool {
	return len(s) > 1
}

// Sample draws a move according to the strategy's weights.
func (s Strategy) Sample(r *rand.Rand) game.Move {
	if len(s) == 0 {
		return nil
	}
	return game.Sample(s, r.Float64())
}

func (s Strategy) String() string {
	if len(s) == 1 {
		return fmt.Sprint(s[0].Value())
	}
	total := game.TotalWeight(s)
	parts := make([]string, len(s))
	for i, w := range s {
		parts[i] = fmt.Sprintf("%v (%.2f)", w.Value(), w.Weight()/total)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
