package searcher

import (
	"testing"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/game/gametest"
	"gamesearch/scoring"
	"gamesearch/tree"

	"github.com/stretchr/testify/require"
)

func newPass(scorer scoring.Scorer) *pass {
	return &pass{
		scorer:   scorer,
		ties:     scoring.TiesOf(scorer),
		extender: scoring.ExtenderOf(scorer),
		metrics:  metrics.NewDummyCollector(),
	}
}

func TestPassCombine(t *testing.T) {
	p := newPass(gametest.NewTable(nil, scoring.TieFirst))

	t.Run("scores are weighted by outcome", func(t *testing.T) {
		lines := []game.Weighted[*tree.Mainline]{
			game.NewWeighted(tree.NewMainline(scoring.Scores{P1: 1, P2: 0}, nil, P1, nil, 0, true), 3),
			game.NewWeighted(tree.NewMainline(scoring.Scores{P1: 0, P2: 1}, nil, P1, nil, 0, true), 1),
		}

		combined := p.combine(lines)

		require.InDelta(t, 0.75, combined[P1], 1e-9)
		require.InDelta(t, 0.25, combined[P2], 1e-9)
	})

	t.Run("players missing from a line count as zero there", func(t *testing.T) {
		lines := []game.Weighted[*tree.Mainline]{
			game.NewWeighted(tree.NewMainline(scoring.Scores{P1: 1, P2: 1}, nil, P1, nil, 0, true), 1),
			game.NewWeighted(tree.NewMainline(scoring.Scores{P1: 1}, nil, P1, nil, 0, true), 1),
		}

		combined := p.combine(lines)

		require.InDelta(t, 1.0, combined[P1], 1e-9)
		require.InDelta(t, 0.5, combined[P2], 1e-9)
	})
}

func TestPassResolve(t *testing.T) {
	g := gametest.NewGraph(P1, P2).
		Add("root", gametest.Position{
			Player: P1,
			Scores: scoring.Scores{P1: 0.4, P2: 0.6},
			Moves: []gametest.Edge{
				gametest.Chance(w("rare", 1), w("likely", 3)),
				gametest.Chance(),
				gametest.To("likely"),
			},
		}).
		Add("rare", gametest.Position{Winners: []string{P2}, Scores: scoring.Scores{P1: 0, P2: 1}}).
		Add("likely", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}})

	setup := func() (*pass, *tree.StateNode) {
		root := tree.New(nil).GetOrAdd(g.State("root"))
		return newPass(gametest.NewTable(nil, scoring.TieFirst)), root
	}

	t.Run("chance outcomes are folded into one line", func(t *testing.T) {
		p, root := setup()
		move := root.MoveNode(root.Moves()[0])

		line := p.resolve(root, move, 0)

		require.InDelta(t, 0.75, line.Score(P1), 1e-9)
		require.InDelta(t, 0.25, line.Score(P2), 1e-9)
		require.True(t, line.FullyDetermined())
		require.True(t, line.State().Equal(g.State("likely")), "line should follow the likeliest outcome")
	})

	t.Run("a move without outcomes is scored at its state", func(t *testing.T) {
		p, root := setup()
		move := root.MoveNode(root.Moves()[1])

		line := p.resolve(root, move, 3)

		require.Equal(t, scoring.Scores{P1: 0.4, P2: 0.6}, line.Scores())
		require.True(t, line.FullyDetermined())
		require.Zero(t, line.Depth())
	})

	t.Run("a deterministic move passes its outcome line through", func(t *testing.T) {
		p, root := setup()
		move := root.MoveNode(root.Moves()[2])

		line := p.resolve(root, move, 1)

		require.Same(t, move.Outcomes()[0].Value().Mainline(), line)
	})
}
