package scoring

import (
	"gamesearch/game"

	"github.com/samber/lo"
)

type Comparator interface {
	Compare(player string, a, b Scores) int
}

// Outcome scores decided games by their result and undecided ones with an
// optional heuristic. Sole winners score WIN, losers LOSS, shared wins and
// draws split WIN evenly.
type Outcome struct {
	Expected
	Comparator
	Heuristic game.Evaluate
	Policy    TiePolicy
}

// NewOutcome defaults to Selfish comparison when comparator is nil. Without a
// heuristic, undecided states score as a draw.
func NewOutcome(heuristic game.Evaluate, comparator Comparator, ties TiePolicy) *Outcome {
	if comparator == nil {
		comparator = Selfish{}
	}
	return &Outcome{
		Comparator: comparator,
		Heuristic:  heuristic,
		Policy:     ties,
	}
}

// Score uses the heuristic for every state without winners; it does not
// look at legal moves.
func (o *Outcome) Score(state game.State, player string) float64 {
	if winners := state.Winners(); len(winners) > 0 {
		return result(winners, player)
	}
	if o.Heuristic == nil {
		return draw(state)
	}
	return min(WIN, max(LOSS, o.Heuristic(state, player)))
}

// ScoreTerminal scores a finished game: its result, or a draw when nobody won.
func (o *Outcome) ScoreTerminal(state game.State, player string) float64 {
	if winners := state.Winners(); len(winners) > 0 {
		return result(winners, player)
	}
	return draw(state)
}

func (o *Outcome) Ties() TiePolicy {
	return o.Policy
}

func result(winners []string, player string) float64 {
	if lo.Contains(winners, player) {
		return WIN / float64(len(winners))
	}
	return LOSS
}

func draw(state game.State) float64 {
	players := len(state.Players())
	if players == 0 {
		return LOSS
	}
	return WIN / float64(players)
}
