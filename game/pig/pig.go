// Package pig implements the two-player dice game Pig: on each turn a player
// rolls a die, accumulating the face value until they hold or roll a one.
package pig

import (
	"encoding/binary"
	"fmt"

	"gamesearch/game"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"
)

const DefaultTarget = 20

const (
	Roll Action = iota
	Hold
)

type Action int

func (a Action) String() string {
	if a == Roll {
		return "roll"
	}
	return "hold"
}

var players = []string{"P1", "P2"}

type State struct {
	target    int
	scores    [2]int
	turnTotal int
	current   int
}

type Move struct {
	Action Action
	player string
	origin *State
}

func (m Move) Player() string {
	return m.player
}

func (m Move) IsStochastic() bool {
	return m.Action == Roll
}

func (m Move) Origin() game.State {
	return m.origin
}

func (m Move) String() string {
	return fmt.Sprintf("%s:%s", m.player, m.Action)
}

func New(target int) *State {
	if target <= 0 {
		target = DefaultTarget
	}
	return &State{target: target}
}

// NewPosition builds a position mid-game, for analysis and tests.
func NewPosition(target int, scores [2]int, turnTotal int, current int) *State {
	return &State{target: target, scores: scores, turnTotal: turnTotal, current: current % 2}
}

func (s *State) Scores() [2]int {
	return s.scores
}

func (s *State) TurnTotal() int {
	return s.turnTotal
}

func (s *State) Player() string {
	if len(s.Winners()) > 0 {
		return game.NoPlayer
	}
	return players[s.current]
}

func (s *State) Players() []string {
	return players
}

func (s *State) LegalMoves() []game.Move {
	if len(s.Winners()) > 0 {
		return nil
	}
	moves := []game.Move{Move{Action: Roll, player: players[s.current], origin: s}}
	if s.turnTotal > 0 {
		moves = append(moves, Move{Action: Hold, player: players[s.current], origin: s})
	}
	return moves
}

// Play applies the move, rolling a real die for stochastic moves.
func (s *State) Play(move game.Move) game.State {
	m, ok := move.(Move)
	if !ok {
		panic(fmt.Sprintf("unexpected move type %T", move))
	}
	if m.Action == Hold {
		return s.hold()
	}
	return s.roll(frand.Intn(6) + 1)
}

func (s *State) Outcomes(move game.Move) []game.Weighted[game.State] {
	m, ok := move.(Move)
	if !ok {
		panic(fmt.Sprintf("unexpected move type %T", move))
	}
	if m.Action == Hold {
		return []game.Weighted[game.State]{game.NewWeighted[game.State](s.hold(), 1)}
	}
	outcomes := make([]game.Weighted[game.State], 0, 6)
	for face := 1; face <= 6; face++ {
		outcomes = append(outcomes, game.NewWeighted[game.State](s.roll(face), 1))
	}
	return outcomes
}

func (s *State) Winners() []string {
	for i, score := range s.scores {
		if score >= s.target {
			return []string{players[i]}
		}
	}
	return nil
}

func (s *State) Hash() game.StateHash {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(s.target))
	binary.LittleEndian.PutUint64(buf[8:], uint64(s.scores[0]))
	binary.LittleEndian.PutUint64(buf[16:], uint64(s.scores[1]))
	binary.LittleEndian.PutUint64(buf[24:], uint64(s.turnTotal))
	binary.LittleEndian.PutUint64(buf[32:], uint64(s.current))
	return game.StateHash(xxhash.Sum64(buf[:]))
}

func (s *State) Equal(other game.State) bool {
	o, ok := other.(*State)
	return ok && *o == *s
}

func (s *State) String() string {
	return fmt.Sprintf("%d-%d (turn %d, to move %s)", s.scores[0], s.scores[1], s.turnTotal, players[s.current])
}

func (s *State) hold() *State {
	next := *s
	next.scores[s.current] += s.turnTotal
	next.turnTotal = 0
	if next.scores[s.current] < s.target {
		next.current = 1 - s.current
	}
	return &next
}

func (s *State) roll(face int) *State {
	next := *s
	if face == 1 {
		next.turnTotal = 0
		next.current = 1 - s.current
		return &next
	}
	next.turnTotal += face
	// Reaching the target banks the points immediately
	if next.scores[s.current]+next.turnTotal >= s.target {
		next.scores[s.current] += next.turnTotal
		next.turnTotal = 0
	}
	return &next
}
