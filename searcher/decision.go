package searcher

import (
	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/scoring"
	"gamesearch/tree"

	"github.com/samber/lo"
)

// pass is one deepening iteration over the tree.
type pass struct {
	scorer   scoring.Scorer
	ties     scoring.TiePolicy
	extender scoring.PlyExtender
	metrics  metrics.Collector
}

// expand returns the mainline of the node searched with the given remaining
// budget and stores it on the node. A stored mainline that is exact or at
// least as deep as the budget is reused, so within one pass a node's mainline
// is never replaced by a shallower one.
func (p *pass) expand(node *tree.StateNode, budget int) *tree.Mainline {
	if stored := node.Mainline(); stored != nil && (stored.FullyDetermined() || stored.Depth() >= budget) {
		p.metrics.AddCacheHit()
		return stored
	}
	p.metrics.AddNode()

	var mainline *tree.Mainline
	if terminal := node.Terminal(); terminal || budget <= 0 {
		mainline = p.leaf(node.State(), terminal)
	} else {
		mainline = p.decide(node, budget)
	}
	node.SetMainline(mainline)
	return mainline
}

// leaf values the state directly with the scorer.
func (p *pass) leaf(state game.State, terminal bool) *tree.Mainline {
	players := state.Players()
	scores := make(scoring.Scores, len(players))
	for _, player := range players {
		scores[player] = scoring.ScoreLeaf(p.scorer, state, player, terminal)
	}
	player := game.NoPlayer
	if !terminal {
		player = state.Player()
	}
	return tree.NewMainline(scores, state, player, nil, 0, terminal)
}

// decide searches every move and lets the acting player pick the best.
func (p *pass) decide(node *tree.StateNode, budget int) *tree.Mainline {
	moves := node.Moves()
	lines := make([]*tree.Mainline, len(moves))
	scores := make([]scoring.Scores, len(moves))
	for i, move := range moves {
		child := node.MoveNode(move)
		lines[i] = p.resolve(node, child, budget-1)
		scores[i] = lines[i].Scores()
		child.SetScore(scores[i])
	}

	player := node.State().Player()
	if player == game.NoPlayer {
		player = moves[0].Player()
	}

	best := []int{0}
	for i := 1; i < len(moves); i++ {
		switch order := p.scorer.Compare(player, scores[i], scores[best[0]]); {
		case order > 0:
			best = []int{i}
		case order == 0:
			best = append(best, i)
		}
	}

	line := lines[best[0]]
	strategy := tree.Pure(moves[best[0]])
	if p.ties == scoring.TieMixed && len(best) > 1 {
		tied := lo.Map(best, func(i int, _ int) game.Weighted[*tree.Mainline] {
			return game.NewWeighted(lines[i], 1)
		})
		line = line.Rebase(p.combine(tied), line.Depth(), line.FullyDetermined())
		strategy = tree.Uniform(lo.Map(best, func(i int, _ int) game.Move {
			return moves[i]
		})...)
	}

	line = line.Extend(player, strategy, p.extender)
	depth, exact := combinedDepth(lines)
	if line.Depth() != depth+1 || line.FullyDetermined() != exact {
		line = line.Rebase(nil, depth+1, exact)
	}
	return line
}

// combinedDepth is the depth the lines are jointly established at: the
// shallowest truncated line, or the deepest one when all are exact.
func combinedDepth(lines []*tree.Mainline) (depth int, exact bool) {
	truncated := lo.Filter(lines, func(line *tree.Mainline, _ int) bool {
		return !line.FullyDetermined()
	})
	if len(truncated) == 0 {
		return lo.Max(lo.Map(lines, func(line *tree.Mainline, _ int) int {
			return line.Depth()
		})), true
	}
	return lo.Min(lo.Map(truncated, func(line *tree.Mainline, _ int) int {
		return line.Depth()
	})), false
}
