// Package gametest provides a scripted game for testing search code: named
// positions joined by deterministic or chance moves, with fixed scores.
package gametest

import (
	"fmt"

	"gamesearch/game"
	"gamesearch/scoring"

	"github.com/cespare/xxhash"
	"github.com/samber/lo"
	"lukechampine.com/frand"
)

type Graph struct {
	players      []string
	positions    map[string]Position
	enumerations map[string]int
}

type Position struct {
	Player  string
	Winners []string
	Scores  scoring.Scores
	Moves   []Edge
}

type Edge struct {
	Stochastic bool
	Outcomes   []game.Weighted[string]
}

// To is a deterministic move to the named position.
func To(name string) Edge {
	return Edge{Outcomes: []game.Weighted[string]{game.NewWeighted(name, 1)}}
}

// Chance is a stochastic move to weighted positions.
func Chance(outcomes ...game.Weighted[string]) Edge {
	return Edge{Stochastic: true, Outcomes: outcomes}
}

func NewGraph(players ...string) *Graph {
	return &Graph{
		players:      players,
		positions:    make(map[string]Position),
		enumerations: make(map[string]int),
	}
}

func (g *Graph) Add(name string, position Position) *Graph {
	g.positions[name] = position
	return g
}

// State returns a fresh state object for the position. States of the same
// position are Equal but never identical.
func (g *Graph) State(name string) *State {
	if _, ok := g.positions[name]; !ok {
		panic(fmt.Sprintf("unknown position %q", name))
	}
	return &State{graph: g, name: name}
}

// Enumerations counts the LegalMoves calls made on the position.
func (g *Graph) Enumerations(name string) int {
	return g.enumerations[name]
}

type State struct {
	graph *Graph
	name  string
}

func (s *State) Name() string {
	return s.name
}

func (s *State) position() Position {
	return s.graph.positions[s.name]
}

func (s *State) Player() string {
	if len(s.position().Winners) > 0 {
		return game.NoPlayer
	}
	return s.position().Player
}

func (s *State) Players() []string {
	return s.graph.players
}

func (s *State) LegalMoves() []game.Move {
	s.graph.enumerations[s.name]++
	position := s.position()
	if len(position.Winners) > 0 {
		return nil
	}
	return lo.Map(position.Moves, func(edge Edge, i int) game.Move {
		return Move{graph: s.graph, from: s.name, index: i, player: position.Player, stochastic: edge.Stochastic}
	})
}

func (s *State) edge(move game.Move) Edge {
	m, ok := move.(Move)
	if !ok || m.from != s.name {
		panic(fmt.Sprintf("move %v does not belong to %s", move, s.name))
	}
	return s.position().Moves[m.index]
}

func (s *State) Play(move game.Move) game.State {
	name := game.Sample(s.edge(move).Outcomes, frand.Float64())
	return s.graph.State(name)
}

func (s *State) Outcomes(move game.Move) []game.Weighted[game.State] {
	return lo.Map(s.edge(move).Outcomes, func(outcome game.Weighted[string], _ int) game.Weighted[game.State] {
		return game.NewWeighted[game.State](s.graph.State(outcome.Value()), outcome.Weight())
	})
}

func (s *State) Winners() []string {
	return s.position().Winners
}

func (s *State) Hash() game.StateHash {
	return game.StateHash(xxhash.Sum64String(s.name))
}

func (s *State) Equal(other game.State) bool {
	o, ok := other.(*State)
	return ok && o.graph == s.graph && o.name == s.name
}

func (s *State) String() string {
	return s.name
}

type Move struct {
	graph      *Graph
	from       string
	index      int
	player     string
	stochastic bool
}

func (m Move) Player() string {
	return m.player
}

func (m Move) IsStochastic() bool {
	return m.stochastic
}

func (m Move) Origin() game.State {
	return m.graph.State(m.from)
}

func (m Move) String() string {
	return fmt.Sprintf("%s#%d", m.from, m.index)
}

// Table scores every position by its scripted Scores and combines chance
// outcomes by expectation.
type Table struct {
	scoring.Expected
	scoring.Comparator
	Policy scoring.TiePolicy
}

func NewTable(comparator scoring.Comparator, ties scoring.TiePolicy) *Table {
	if comparator == nil {
		comparator = scoring.Selfish{}
	}
	return &Table{Comparator: comparator, Policy: ties}
}

func (t *Table) Score(state game.State, player string) float64 {
	return state.(*State).position().Scores[player]
}

func (t *Table) Ties() scoring.TiePolicy {
	return t.Policy
}
