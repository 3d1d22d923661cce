// Package tictactoe is a deterministic two-player reference game.
package tictactoe

import (
	"fmt"
	"strings"

	"gamesearch/game"

	"github.com/cespare/xxhash"
)

const (
	X = "X"
	O = "O"
)

const empty = '.'

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is an immutable tic-tac-toe position.
type Board struct {
	cells  [9]byte
	toMove string
}

type Move struct {
	Cell   int
	Mark   string
	origin *Board
}

func (m Move) Player() string {
	return m.Mark
}

func (m Move) IsStochastic() bool {
	return false
}

func (m Move) Origin() game.State {
	return m.origin
}

func (m Move) String() string {
	return fmt.Sprintf("%s@%d", m.Mark, m.Cell)
}

func NewBoard() *Board {
	b := &Board{toMove: X}
	for i := range b.cells {
		b.cells[i] = empty
	}
	return b
}

// Parse reads a board from 9 cells of 'X', 'O' or '.' and the player to move.
func Parse(cells string, toMove string) (*Board, error) {
	if len(cells) != 9 {
		return nil, fmt.Errorf("expected 9 cells, got %d", len(cells))
	}
	if toMove != X && toMove != O {
		return nil, fmt.Errorf("unknown player %q", toMove)
	}
	b := &Board{toMove: toMove}
	for i := 0; i < 9; i++ {
		switch c := cells[i]; c {
		case 'X', 'O', empty:
			b.cells[i] = c
		default:
			return nil, fmt.Errorf("invalid cell %q at %d", c, i)
		}
	}
	return b, nil
}

func (b *Board) Player() string {
	if len(b.Winners()) > 0 || b.full() {
		return game.NoPlayer
	}
	return b.toMove
}

func (b *Board) Players() []string {
	return []string{X, O}
}

func (b *Board) LegalMoves() []game.Move {
	if len(b.Winners()) > 0 {
		return nil
	}
	moves := make([]game.Move, 0, 9)
	for i, c := range b.cells {
		if c == empty {
			moves = append(moves, Move{Cell: i, Mark: b.toMove, origin: b})
		}
	}
	return moves
}

func (b *Board) Play(move game.Move) game.State {
	m, ok := move.(Move)
	if !ok {
		panic(fmt.Sprintf("unexpected move type %T", move))
	}
	if b.cells[m.Cell] != empty {
		panic(fmt.Sprintf("cell %d is already taken", m.Cell))
	}
	next := &Board{cells: b.cells, toMove: opponent(b.toMove)}
	next.cells[m.Cell] = m.Mark[0]
	return next
}

func (b *Board) Outcomes(move game.Move) []game.Weighted[game.State] {
	return []game.Weighted[game.State]{game.NewWeighted(b.Play(move), 1)}
}

func (b *Board) Winners() []string {
	for _, line := range lines {
		c := b.cells[line[0]]
		if c != empty && c == b.cells[line[1]] && c == b.cells[line[2]] {
			return []string{string(c)}
		}
	}
	return nil
}

func (b *Board) Hash() game.StateHash {
	var buf [10]byte
	copy(buf[:], b.cells[:])
	buf[9] = b.toMove[0]
	return game.StateHash(xxhash.Sum64(buf[:]))
}

func (b *Board) Equal(other game.State) bool {
	o, ok := other.(*Board)
	return ok && o.cells == b.cells && o.toMove == b.toMove
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		sb.Write(b.cells[row*3 : row*3+3])
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) full() bool {
	for _, c := range b.cells {
		if c == empty {
			return false
		}
	}
	return true
}

func opponent(player string) string {
	if player == X {
		return O
	}
	return X
}
