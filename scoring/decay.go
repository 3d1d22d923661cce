package scoring

import "gamesearch/game"

// Decay shrinks a score towards Pivot by Factor for every ply it is carried
// up the tree. With Pivot between LOSS and WIN, a win found sooner keeps more
// of its value and a loss further away is worth more than an imminent one.
type Decay struct {
	Factor float64
	Pivot  float64
}

func (d Decay) ExtendPly(score float64) float64 {
	return d.Pivot + (score-d.Pivot)*d.Factor
}

// Decaying attaches a Decay extender to a scorer.
type Decaying struct {
	Scorer
	Decay
}

// WithDecay wraps the scorer so every ply shrinks scores towards the draw value
// of a two-player game by the given factor.
func WithDecay(s Scorer, factor float64) Decaying {
	return Decaying{
		Scorer: s,
		Decay:  Decay{Factor: factor, Pivot: (WIN + LOSS) / 2},
	}
}

func (d Decaying) ScoreTerminal(state game.State, player string) float64 {
	return ScoreLeaf(d.Scorer, state, player, true)
}

func (d Decaying) Ties() TiePolicy {
	return TiesOf(d.Scorer)
}
