package tree

import (
	"fmt"
	"maps"
	"strings"

	"gamesearch/game"
	"gamesearch/scoring"

	"github.com/samber/lo"
)

// Mainline is an immutable snapshot of a computed line of play: the
// per-player scores, the state the line ends in, who acts at its head, the
// strategies played from the head down, the depth the scores were established
// at and whether everything below was searched to the end of the game.
type Mainline struct {
	scores          scoring.Scores
	state           game.State
	player          string
	line            *step
	depth           int
	fullyDetermined bool
}

// step is a link of the persistent strategy stack, shared between extensions.
type step struct {
	player   string
	strategy Strategy
	next     *step
}

// Step is one ply of a mainline: who played and what.
type Step struct {
	Player   string
	Strategy Strategy
}

// NewMainline copies the scores. Steps are listed top first, i.e. in the
// order they are played, each with the player who plays it; player acts at
// the head of the line.
func NewMainline(scores scoring.Scores, state game.State, player string, steps []Step, depth int, fullyDetermined bool) *Mainline {
	var line *step
	for i := len(steps) - 1; i >= 0; i-- {
		line = &step{player: steps[i].Player, strategy: steps[i].Strategy, next: line}
	}
	return &Mainline{
		scores:          maps.Clone(scores),
		state:           state,
		player:          player,
		line:            line,
		depth:           depth,
		fullyDetermined: fullyDetermined,
	}
}

// Extend builds the line one ply deeper, with the player playing the strategy
// on top. A non-nil extender is applied to every player's score. The result is
// never more determined than the receiver.
func (m *Mainline) Extend(player string, strategy Strategy, extender scoring.PlyExtender) *Mainline {
	scores := m.scores
	if extender != nil {
		scores = lo.MapValues(m.scores, func(score float64, _ string) float64 {
			return extender.ExtendPly(score)
		})
	}
	return &Mainline{
		scores:          scores,
		state:           m.state,
		player:          player,
		line:            &step{player: player, strategy: strategy, next: m.line},
		depth:           m.depth + 1,
		fullyDetermined: m.fullyDetermined,
	}
}

// Rebase returns the same line of play with different scores, depth and
// exhaustiveness, for the search driver once it knows how the whole subtree
// resolved. Nil scores keep the current ones.
func (m *Mainline) Rebase(scores scoring.Scores, depth int, fullyDetermined bool) *Mainline {
	rebased := *m
	if scores != nil {
		rebased.scores = maps.Clone(scores)
	}
	rebased.depth = depth
	rebased.fullyDetermined = fullyDetermined
	return &rebased
}

// Scores returns a copy of the per-player scores.
func (m *Mainline) Scores() scoring.Scores {
	return maps.Clone(m.scores)
}

// Score returns the player's score, 0 for players not in the line.
func (m *Mainline) Score(player string) float64 {
	return m.scores[player]
}

func (m *Mainline) State() game.State {
	return m.state
}

// Player acts at the head of the line, game.NoPlayer if nobody does.
func (m *Mainline) Player() string {
	return m.player
}

func (m *Mainline) Depth() int {
	return m.depth
}

func (m *Mainline) FullyDetermined() bool {
	return m.fullyDetermined
}

// Strategies lists the strategies top first.
func (m *Mainline) Strategies() []Strategy {
	strategies := []Strategy{}
	for s := m.line; s != nil; s = s.next {
		strategies = append(strategies, s.strategy)
	}
	return strategies
}

// Steps lists the plies top first, with their players.
func (m *Mainline) Steps() []Step {
	steps := []Step{}
	for s := m.line; s != nil; s = s.next {
		steps = append(steps, Step{Player: s.player, Strategy: s.strategy})
	}
	return steps
}

// Move recommends the first move of the topmost strategy, nil if the line is empty.
func (m *Mainline) Move() game.Move {
	if m.line == nil {
		return nil
	}
	return m.line.strategy.First()
}

// Moves is the principal variation: the first move of every strategy.
func (m *Mainline) Moves() []game.Move {
	return lo.Map(m.Strategies(), func(s Strategy, _ int) game.Move {
		return s.First()
	})
}

func (m *Mainline) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "depth %d", m.depth)
	if m.fullyDetermined {
		sb.WriteString(" (exact)")
	}
	for _, player := range scoring.Players(m.scores) {
		fmt.Fprintf(&sb, " %s=%.3f", player, m.scores[player])
	}
	for i, s := range m.Steps() {
		fmt.Fprintf(&sb, "; %d: %s %v", i+1, s.Player, s.Strategy)
	}
	return sb.String()
}
