package searcher

import (
	"gamesearch/game"
	"gamesearch/scoring"
	"gamesearch/tree"

	"github.com/samber/lo"
)

// resolve searches every outcome of the move and folds them into one line
// carrying the combined scores. The line of play itself is the one of the
// most likely outcome.
func (p *pass) resolve(parent *tree.StateNode, child *tree.MoveNode, budget int) *tree.Mainline {
	outcomes := child.Outcomes()
	switch len(outcomes) {
	case 0:
		// The move ends the game by itself
		return p.leaf(parent.State(), true)
	case 1:
		return p.expand(outcomes[0].Value(), budget)
	}

	lines := lo.Map(outcomes, func(outcome game.Weighted[*tree.StateNode], _ int) game.Weighted[*tree.Mainline] {
		return game.NewWeighted(p.expand(outcome.Value(), budget), outcome.Weight())
	})
	likeliest := lo.MaxBy(lines, func(a, b game.Weighted[*tree.Mainline]) bool {
		return a.Weight() > b.Weight()
	})
	depth, exact := combinedDepth(lo.Map(lines, func(line game.Weighted[*tree.Mainline], _ int) *tree.Mainline {
		return line.Value()
	}))
	return likeliest.Value().Rebase(p.combine(lines), depth, exact)
}

// combine folds weighted lines into one score per player with the scorer's
// combination rule. Players missing from a line count as 0 there.
func (p *pass) combine(lines []game.Weighted[*tree.Mainline]) scoring.Scores {
	players := scoring.Players(lo.Map(lines, func(line game.Weighted[*tree.Mainline], _ int) scoring.Scores {
		return line.Value().Scores()
	})...)
	combined := make(scoring.Scores, len(players))
	for _, player := range players {
		combined[player] = p.scorer.Combine(lo.Map(lines, func(line game.Weighted[*tree.Mainline], _ int) game.Weighted[float64] {
			return game.NewWeighted(line.Value().Score(player), line.Weight())
		}))
	}
	return combined
}
