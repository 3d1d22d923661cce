package tree

import (
	"gamesearch/game"
	"gamesearch/scoring"

	"github.com/samber/lo"
)

// MoveNode is the chance fan-out of one move under one state. Its outcome
// states are resolved once, at construction; their nodes are looked up in the
// tree on every access. A move node never holds a state node, so the cache is
// the only owner of state nodes.
type MoveNode struct {
	tree     *Tree
	move     game.Move
	outcomes []game.Weighted[game.State]
	score    scoring.Scores
}

func newMoveNode(tree *Tree, state game.State, move game.Move) *MoveNode {
	return &MoveNode{
		tree:     tree,
		move:     move,
		outcomes: game.Resolve(state, move),
	}
}

func (m *MoveNode) Move() game.Move {
	return m.move
}

// Outcomes returns the current node of every outcome, creating nodes the
// cache no longer holds. An empty list means the move ends the game by itself.
func (m *MoveNode) Outcomes() []game.Weighted[*StateNode] {
	return lo.Map(m.outcomes, func(o game.Weighted[game.State], _ int) game.Weighted[*StateNode] {
		return game.NewWeighted(m.tree.GetOrAdd(o.Value()), o.Weight())
	})
}

// Score returns the last score assigned by the search, nil if none.
func (m *MoveNode) Score() scoring.Scores {
	return m.score
}

func (m *MoveNode) SetScore(score scoring.Scores) {
	m.score = score
}
