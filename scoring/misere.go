package scoring

import "gamesearch/game"

// Misere inverts the wrapped scorer: what would win now loses. Combination,
// comparison, ply extension and tie reporting are forwarded unchanged.
type Misere struct {
	Scorer
}

func NewMisere(s Scorer) Misere {
	return Misere{Scorer: s}
}

func (m Misere) Score(state game.State, player string) float64 {
	return WIN + LOSS - m.Scorer.Score(state, player)
}

func (m Misere) ScoreTerminal(state game.State, player string) float64 {
	return WIN + LOSS - ScoreLeaf(m.Scorer, state, player, true)
}

// ExtendPly forwards to the wrapped extender, leaving scores untouched if there is none.
func (m Misere) ExtendPly(score float64) float64 {
	if extender := ExtenderOf(m.Scorer); extender != nil {
		return extender.ExtendPly(score)
	}
	return score
}

func (m Misere) Ties() TiePolicy {
	return TiesOf(m.Scorer)
}
