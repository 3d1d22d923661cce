package game

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	// ErrForeignMove is raised when a move is applied to a state it was not generated from
	ErrForeignMove = errors.New("move does not belong to state")
	// ErrInvalidWeight is raised for negative, infinite or NaN outcome weights
	ErrInvalidWeight = errors.New("invalid outcome weight")
)

// Verify checks that the move was generated from a state equal to the given one.
func Verify(state State, move Move) error {
	if move == nil {
		return errors.Wrap(ErrForeignMove, "nil move")
	}
	origin := move.Origin()
	if origin == nil || !origin.Equal(state) {
		return errors.Wrapf(ErrForeignMove, "move %v by %q", move, move.Player())
	}
	return nil
}

// Resolve returns the weighted outcomes of applying the move to the state.
// Deterministic moves yield exactly one outcome of weight 1. Zero-weight
// outcomes of stochastic moves are dropped, so every returned weight is positive.
func Resolve(state State, move Move) []Weighted[State] {
	if !move.IsStochastic() {
		return []Weighted[State]{{value: state.Play(move), weight: 1}}
	}

	outcomes := state.Outcomes(move)
	for _, outcome := range outcomes {
		if !validWeight(outcome.weight) {
			panic(errors.Wrapf(ErrInvalidWeight, "outcome of move %v has weight %v", move, outcome.weight))
		}
	}
	return lo.Filter(outcomes, func(outcome Weighted[State], _ int) bool {
		return outcome.weight > 0
	})
}

// IsTerminal reports whether no further play is possible: a winner has been
// declared or no legal move remains.
func IsTerminal(state State) bool {
	return len(state.Winners()) > 0 || len(state.LegalMoves()) == 0
}
