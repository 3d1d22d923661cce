package searcher

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"
	"weak"

	"gamesearch/game"
	"gamesearch/game/gametest"
	"gamesearch/scoring"
	"gamesearch/tree"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	P1 = "P1"
	P2 = "P2"
)

func quiet() Option {
	return WithLogger(zerolog.Nop())
}

func w(name string, weight float64) game.Weighted[string] {
	return game.NewWeighted(name, weight)
}

// chain is a one-move-per-position game of the given length won by P1.
func chain(length int) *gametest.Graph {
	g := gametest.NewGraph(P1, P2)
	players := []string{P1, P2}
	for i := 0; i < length; i++ {
		g.Add(fmt.Sprint("p", i), gametest.Position{
			Player: players[i%2],
			Scores: scoring.Scores{P1: 0.5, P2: 0.5},
			Moves:  []gametest.Edge{gametest.To(fmt.Sprint("p", i+1))},
		})
	}
	g.Add(fmt.Sprint("p", length), gametest.Position{
		Winners: []string{P1},
		Scores:  scoring.Scores{P1: 1, P2: 0},
	})
	return g
}

func TestSearchDeterministic(t *testing.T) {
	g := gametest.NewGraph(P1, P2).
		Add("root", gametest.Position{
			Player: P1,
			Moves:  []gametest.Edge{gametest.To("p2wins"), gametest.To("p1wins")},
		}).
		Add("p1wins", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}}).
		Add("p2wins", gametest.Position{Winners: []string{P2}, Scores: scoring.Scores{P1: 0, P2: 1}})

	t.Run("mover picks the move that wins for them", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		require.Equal(t, root.LegalMoves()[1], mainline.Move(), "P1 should play into its own win")
		require.Equal(t, 1.0, mainline.Score(P1))
		require.Equal(t, 0.0, mainline.Score(P2))
		require.Equal(t, 1, mainline.Depth())
		require.True(t, mainline.FullyDetermined(), "Both moves end the game")
		require.Equal(t, P1, mainline.Player())
	})

	t.Run("exact root stops deepening", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(5), WithMetrics(), quiet())

		_, metric := e.Search(context.Background(), g.State("root"))

		require.Equal(t, 1, metric.Plies, "Deeper plies cannot change an exact result")
		require.True(t, metric.FullyDetermined)
		require.False(t, metric.Cancelled)
		require.NotEmpty(t, metric.ID)
	})

	t.Run("move scores are recorded on move nodes", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), quiet())
		root := g.State("root")

		e.Search(context.Background(), root)

		node := e.Tree().GetOrAdd(root)
		moves := node.Moves()
		require.Equal(t, scoring.Scores{P1: 0, P2: 1}, node.MoveNode(moves[0]).Score())
		require.Equal(t, scoring.Scores{P1: 1, P2: 0}, node.MoveNode(moves[1]).Score())
	})
}

func TestSearchChance(t *testing.T) {
	g := gametest.NewGraph(P1, P2).
		Add("root", gametest.Position{
			Player: P1,
			Moves:  []gametest.Edge{gametest.Chance(w("low", 1), w("high", 3))},
		}).
		Add("low", gametest.Position{Winners: []string{P2}, Scores: scoring.Scores{P1: 0}}).
		Add("high", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 10}})

	t.Run("outcomes combine to their expectation", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		require.InDelta(t, 7.5, mainline.Score(P1), 1e-9, "(1*0 + 3*10) / 4")
		move := e.Tree().GetOrAdd(root).MoveNode(root.LegalMoves()[0])
		require.InDelta(t, 7.5, move.Score()[P1], 1e-9)
		require.True(t, mainline.FullyDetermined())
		require.True(t, mainline.State().Equal(g.State("high")), "Line should follow the likeliest outcome")
	})

	t.Run("chance is preferred over a worse certainty", func(t *testing.T) {
		g := gametest.NewGraph(P1).
			Add("root", gametest.Position{
				Player: P1,
				Moves: []gametest.Edge{
					gametest.To("seven"),
					gametest.Chance(w("low", 1), w("high", 3)),
				},
			}).
			Add("seven", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 7}}).
			Add("low", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 0}}).
			Add("high", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 10}})
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		require.Equal(t, root.LegalMoves()[1], mainline.Move())
		require.InDelta(t, 7.5, mainline.Score(P1), 1e-9)
	})
}

func TestSearchTransposition(t *testing.T) {
	diamond := func() *gametest.Graph {
		return gametest.NewGraph(P1, P2).
			Add("root", gametest.Position{
				Player: P1,
				Scores: scoring.Scores{P1: 0.5, P2: 0.5},
				Moves:  []gametest.Edge{gametest.To("left"), gametest.To("right")},
			}).
			Add("left", gametest.Position{Player: P2, Scores: scoring.Scores{P1: 0.5, P2: 0.5}, Moves: []gametest.Edge{gametest.To("meet")}}).
			Add("right", gametest.Position{Player: P2, Scores: scoring.Scores{P1: 0.5, P2: 0.5}, Moves: []gametest.Edge{gametest.To("meet")}}).
			Add("meet", gametest.Position{Player: P1, Scores: scoring.Scores{P1: 0.5, P2: 0.5}, Moves: []gametest.Edge{gametest.To("end")}}).
			Add("end", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}})
	}

	t.Run("both move orders reach one node", func(t *testing.T) {
		g := diamond()
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(3), quiet())
		root := g.State("root")
		e.Search(context.Background(), root)

		node := e.Tree().GetOrAdd(root)
		moves := node.Moves()
		left := node.MoveNode(moves[0]).Outcomes()[0].Value()
		right := node.MoveNode(moves[1]).Outcomes()[0].Value()
		viaLeft := left.MoveNode(left.Moves()[0]).Outcomes()[0].Value()
		viaRight := right.MoveNode(right.Moves()[0]).Outcomes()[0].Value()

		require.Same(t, viaLeft, viaRight, "Both move orders should reach one node")
		require.Same(t, viaLeft, e.Tree().GetOrAdd(g.State("meet")))
		require.Equal(t, 1, g.Enumerations("meet"), "Moves of a shared position are enumerated once")
	})

	t.Run("heuristic leaves are enumerated once", func(t *testing.T) {
		g := diamond()
		heuristic := scoring.NewOutcome(func(state game.State, player string) float64 {
			return 0.5
		}, nil, scoring.TieFirst)
		e := NewExpectimax(heuristic, WithMaxPlies(2), quiet())

		mainline, _ := e.Search(context.Background(), g.State("root"))

		require.False(t, mainline.FullyDetermined(), "The shared position should be a budget leaf")
		require.Equal(t, 1, g.Enumerations("meet"))
		require.Equal(t, 1, g.Enumerations("left"))
	})
}

func TestSearchTies(t *testing.T) {
	g := gametest.NewGraph(P1, P2).
		Add("root", gametest.Position{
			Player: P1,
			Moves:  []gametest.Edge{gametest.To("a"), gametest.To("b")},
		}).
		Add("a", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}}).
		Add("b", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0.5}})

	t.Run("first found move by default", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		strategy := mainline.Strategies()[0]
		require.False(t, strategy.IsMixed())
		require.Equal(t, root.LegalMoves()[0], strategy.First())
		require.Equal(t, 0.0, mainline.Score(P2))
	})

	t.Run("mixed strategy over equally good moves", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(1), WithTiePolicy(scoring.TieMixed), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		strategy := mainline.Strategies()[0]
		require.True(t, strategy.IsMixed())
		require.Len(t, strategy, 2)
		require.Equal(t, 1.0, mainline.Score(P1))
		require.InDelta(t, 0.25, mainline.Score(P2), 1e-9, "Other players get the average of the tied lines")
	})
}

func TestSearchPlyExtension(t *testing.T) {
	g := gametest.NewGraph(P1, P2).
		Add("root", gametest.Position{
			Player: P1,
			Moves:  []gametest.Edge{gametest.To("slow"), gametest.To("fast")},
		}).
		Add("slow", gametest.Position{Player: P2, Scores: scoring.Scores{P1: 0.5, P2: 0.5}, Moves: []gametest.Edge{gametest.To("win")}}).
		Add("fast", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}}).
		Add("win", gametest.Position{Winners: []string{P1}, Scores: scoring.Scores{P1: 1, P2: 0}})

	t.Run("without an extender equal wins tie", func(t *testing.T) {
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(2), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		require.Equal(t, root.LegalMoves()[0], mainline.Move())
		require.Equal(t, 1.0, mainline.Score(P1))
	})

	t.Run("decay prefers the faster win", func(t *testing.T) {
		e := NewExpectimax(scoring.WithDecay(gametest.NewTable(nil, scoring.TieFirst), 0.9), WithMaxPlies(2), quiet())
		root := g.State("root")

		mainline, _ := e.Search(context.Background(), root)

		require.Equal(t, root.LegalMoves()[1], mainline.Move())
		require.InDelta(t, 0.95, mainline.Score(P1), 1e-9)
		require.InDelta(t, 0.05, mainline.Score(P2), 1e-9)
	})
}

func TestSearchLimits(t *testing.T) {
	t.Run("cancelling after the first ply keeps its result", func(t *testing.T) {
		g := chain(20)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst),
			WithMaxPlies(10),
			WithMetrics(),
			WithPlyListener(func(ply int, _ *tree.Mainline) {
				if ply == 1 {
					cancel()
				}
			}),
			quiet())

		mainline, metric := e.Search(ctx, g.State("p0"))

		require.NotNil(t, mainline)
		require.GreaterOrEqual(t, mainline.Depth(), 1)
		require.NotNil(t, mainline.Move())
		require.True(t, metric.Cancelled)
		require.Equal(t, 1, metric.Plies)
	})

	t.Run("minimum plies ignore cancellation", func(t *testing.T) {
		g := chain(20)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMinPlies(3), WithMaxPlies(10), WithMetrics(), quiet())

		mainline, metric := e.Search(ctx, g.State("p0"))

		require.Equal(t, 3, mainline.Depth())
		require.False(t, mainline.FullyDetermined())
		require.Equal(t, 3, metric.Plies)
		require.True(t, metric.Cancelled)
	})

	t.Run("maximum plies bound the depth", func(t *testing.T) {
		g := chain(20)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(4), quiet())

		mainline, _ := e.Search(context.Background(), g.State("p0"))

		require.Equal(t, 4, mainline.Depth())
		require.Len(t, mainline.Strategies(), 4)
	})

	t.Run("search reaches the end of a short game", func(t *testing.T) {
		g := chain(6)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(50), quiet())

		mainline, _ := e.Search(context.Background(), g.State("p0"))

		require.True(t, mainline.FullyDetermined())
		require.Equal(t, 6, mainline.Depth())
		require.Equal(t, 1.0, mainline.Score(P1))
		require.Equal(t, game.NoPlayer, g.State("p6").Player())
	})

	t.Run("minimum think time keeps deepening", func(t *testing.T) {
		g := chain(4)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMinThinkTime(time.Second), quiet())

		mainline, _ := e.Search(context.Background(), g.State("p0"))

		require.True(t, mainline.FullyDetermined(), "Search should deepen to the end before the floor elapses")
	})

	t.Run("terminal root yields a leaf", func(t *testing.T) {
		g := chain(1)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(3), quiet())

		mainline, _ := e.Search(context.Background(), g.State("p1"))

		require.Nil(t, mainline.Move())
		require.Equal(t, 0, mainline.Depth())
		require.True(t, mainline.FullyDetermined())
		require.Equal(t, game.NoPlayer, mainline.Player())
	})

	t.Run("unbounded search is rejected", func(t *testing.T) {
		require.Panics(t, func() {
			NewExpectimax(gametest.NewTable(nil, scoring.TieFirst))
		})
	})
}

// recording keeps a weak pointer to every node stored in the cache.
type recording struct {
	*tree.MapCache
	nodes []weak.Pointer[tree.StateNode]
}

func (r *recording) Set(state game.State, node *tree.StateNode) {
	r.nodes = append(r.nodes, weak.Make(node))
	r.MapCache.Set(state, node)
}

func (r *recording) live() int {
	runtime.GC()
	return lo.CountBy(r.nodes, func(p weak.Pointer[tree.StateNode]) bool {
		return p.Value() != nil
	})
}

// ring is an endless game over the given number of positions.
func ring(size int) *gametest.Graph {
	g := gametest.NewGraph(P1, P2)
	players := []string{P1, P2}
	for i := 0; i < size; i++ {
		g.Add(fmt.Sprint("r", i), gametest.Position{
			Player: players[i%2],
			Scores: scoring.Scores{P1: 0.5, P2: 0.5},
			Moves: []gametest.Edge{
				gametest.To(fmt.Sprint("r", (i+1)%size)),
				gametest.To(fmt.Sprint("r", (i+7)%size)),
			},
		})
	}
	return g
}

func TestSearchTrim(t *testing.T) {
	for _, policy := range []tree.TrimPolicy{tree.TrimGenerational, tree.TrimClear} {
		t.Run(fmt.Sprintf("evicted nodes are released with %s trims", policy), func(t *testing.T) {
			g := ring(50)
			cache := &recording{MapCache: tree.NewMapCache(
				tree.WithCapacity(6),
				tree.WithTrimPolicy(policy),
				tree.WithCacheLogger(zerolog.Nop()),
			)}
			e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(20), WithCache(cache), WithMetrics(), quiet())

			mainline, metric := e.Search(context.Background(), g.State("r0"))

			require.Equal(t, 20, metric.Plies)
			require.NotNil(t, mainline.Move())
			require.Positive(t, cache.Stats().Trims)
			live := cache.live()
			require.LessOrEqual(t, live, cache.Len(), "Only cached nodes should stay reachable")
			require.Greater(t, len(cache.nodes), live)
		})
	}

	t.Run("the root line survives the final ply", func(t *testing.T) {
		g := chain(10)
		cache := tree.NewMapCache(tree.WithCapacity(2), tree.WithTrimPolicy(tree.TrimClear), tree.WithCacheLogger(zerolog.Nop()))
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(3), WithCache(cache), quiet())

		mainline, _ := e.Search(context.Background(), g.State("p0"))
		root := e.Tree().GetOrAdd(g.State("p0"))

		require.Positive(t, cache.Stats().Trims)
		require.Same(t, mainline, root.Mainline())
		require.NotEmpty(t, root.MoveNodes())
		require.Equal(t, 3, root.Mainline().Depth())
	})

	t.Run("a later search trims what the previous one left", func(t *testing.T) {
		g := chain(10)
		cache := tree.NewMapCache(tree.WithCapacity(2), tree.WithTrimPolicy(tree.TrimClear), tree.WithCacheLogger(zerolog.Nop()))
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(3), WithCache(cache), quiet())
		e.Search(context.Background(), g.State("p0"))
		trims := cache.Stats().Trims

		e.Search(context.Background(), g.State("p5"))

		require.Greater(t, cache.Stats().Trims, trims)
		_, ok := cache.TryGet(g.State("p1"))
		require.False(t, ok, "Nodes of the previous search should be gone")
	})
}

func TestStart(t *testing.T) {
	t.Run("waiting returns the final mainline", func(t *testing.T) {
		g := chain(20)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxPlies(5), quiet())

		h := e.Start(context.Background(), g.State("p0"))
		mainline, _, err := h.Wait()

		require.NoError(t, err)
		require.Equal(t, 5, mainline.Depth())
		require.Same(t, mainline, h.Best())
	})

	t.Run("stopping keeps the best line so far", func(t *testing.T) {
		g := chain(400)
		e := NewExpectimax(gametest.NewTable(nil, scoring.TieFirst), WithMaxThinkTime(time.Minute), quiet())

		h := e.Start(context.Background(), g.State("p0"))
		require.Eventually(t, func() bool { return h.Best() != nil }, 5*time.Second, time.Millisecond)
		h.Stop()
		mainline, _, err := h.Wait()

		require.NoError(t, err)
		require.NotNil(t, mainline)
		require.GreaterOrEqual(t, mainline.Depth(), 1)
	})
}
