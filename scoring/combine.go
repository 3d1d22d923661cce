package scoring

import (
	"cmp"

	"gamesearch/game"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Expected combines chance outcomes by their expectation under the
// (normalized) outcome distribution. An empty distribution combines to 0.
type Expected struct{}

func (Expected) Combine(outcomes []game.Weighted[float64]) float64 {
	if len(outcomes) == 0 || game.TotalWeight(outcomes) == 0 {
		return 0
	}
	values := lo.Map(outcomes, func(o game.Weighted[float64], _ int) float64 {
		return o.Value()
	})
	weights := lo.Map(outcomes, func(o game.Weighted[float64], _ int) float64 {
		return o.Weight()
	})
	return stat.Mean(values, weights)
}

// Selfish compares score maps by the player's own score only.
type Selfish struct{}

func (Selfish) Compare(player string, a, b Scores) int {
	return cmp.Compare(a[player], b[player])
}

// Paranoid assumes every opponent plays against the player: a line is worth
// the player's score minus the best opponent score, so the player minimizes
// the opponents' max. Equal margins fall back to the player's own score.
type Paranoid struct{}

func (Paranoid) Compare(player string, a, b Scores) int {
	if c := cmp.Compare(margin(player, a), margin(player, b)); c != 0 {
		return c
	}
	return cmp.Compare(a[player], b[player])
}

func margin(player string, scores Scores) float64 {
	own := scores[player]
	best, found := 0.0, false
	for p, score := range scores {
		if p == player {
			continue
		}
		if !found || score > best {
			best, found = score, true
		}
	}
	return own - best
}
