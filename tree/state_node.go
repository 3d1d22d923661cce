package tree

import "gamesearch/game"

// StateNode memoizes everything the search learns about one state.
type StateNode struct {
	tree     *Tree
	state    game.State
	moves    []game.Move
	expanded bool
	children map[game.Move]*MoveNode
	mainline *Mainline
}

func newStateNode(tree *Tree, state game.State) *StateNode {
	return &StateNode{
		tree:  tree,
		state: state,
	}
}

func (n *StateNode) State() game.State {
	return n.state
}

// Moves enumerates the legal moves once; later calls return the same slice.
func (n *StateNode) Moves() []game.Move {
	if !n.expanded {
		n.moves = n.state.LegalMoves()
		n.expanded = true
	}
	return n.moves
}

// Terminal reports a decided game or a state without legal moves.
func (n *StateNode) Terminal() bool {
	return len(n.state.Winners()) > 0 || len(n.Moves()) == 0
}

// MoveNode returns the node of the move under this state, resolving its
// outcomes on first request. It panics if the move was generated from a
// different state.
func (n *StateNode) MoveNode(move game.Move) *MoveNode {
	if child, ok := n.children[move]; ok {
		return child
	}
	if err := game.Verify(n.state, move); err != nil {
		panic(err)
	}

	child := newMoveNode(n.tree, n.state, move)
	if n.children == nil {
		n.children = make(map[game.Move]*MoveNode, len(n.Moves()))
	}
	n.children[move] = child
	return child
}

// MoveNodes lists the move nodes built so far, in legal move order.
func (n *StateNode) MoveNodes() []*MoveNode {
	nodes := make([]*MoveNode, 0, len(n.children))
	for _, move := range n.Moves() {
		if child, ok := n.children[move]; ok {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

// Mainline returns the last line stored for this state, nil if none.
func (n *StateNode) Mainline() *Mainline {
	return n.mainline
}

// SetMainline overwrites the stored line. Depth ordering is up to the caller.
func (n *StateNode) SetMainline(mainline *Mainline) {
	n.mainline = mainline
}
