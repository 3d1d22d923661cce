// Package scoring defines how the search values states: a per-player score,
// a rule combining scores across chance outcomes, a comparison between
// per-player score maps and an optional one-ply extension.
package scoring

import (
	"slices"

	"gamesearch/game"

	"github.com/samber/lo"
)

const WIN = 1.0
const LOSS = 0.0

// Scores maps each player to their score.
type Scores map[string]float64

type Scorer interface {
	// Score values the state for the player
	Score(state game.State, player string) float64
	// Combine folds the weighted scores of chance outcomes into one score
	Combine(outcomes []game.Weighted[float64]) float64
	// Compare orders two score maps from the player's perspective:
	// positive if a is preferable to b, negative if b is, 0 on ties
	Compare(player string, a, b Scores) int
}

// PlyExtender adjusts a score carried one ply further from the leaf, e.g. to
// prefer faster wins and slower losses.
type PlyExtender interface {
	ExtendPly(score float64) float64
}

type TiePolicy int

const (
	// TieFirst reports the first best move found
	TieFirst TiePolicy = iota
	// TieMixed reports every equally good move as a uniform mixed strategy
	TieMixed
)

func (p TiePolicy) String() string {
	if p == TieMixed {
		return "mixed"
	}
	return "first"
}

// ParseTiePolicy accepts "first" and "mixed".
func ParseTiePolicy(name string) (TiePolicy, bool) {
	switch name {
	case "first", "":
		return TieFirst, true
	case "mixed":
		return TieMixed, true
	}
	return TieFirst, false
}

// TerminalScorer is implemented by scorers that value finished games apart
// from unfinished ones. The search calls it for terminal leaves, so a scorer
// never has to enumerate moves to tell the two apart.
type TerminalScorer interface {
	ScoreTerminal(state game.State, player string) float64
}

// ScoreLeaf values a leaf, through ScoreTerminal when the state is terminal
// and the scorer implements it.
func ScoreLeaf(s Scorer, state game.State, player string, terminal bool) float64 {
	if t, ok := s.(TerminalScorer); ok && terminal {
		return t.ScoreTerminal(state, player)
	}
	return s.Score(state, player)
}

// TieReporter is implemented by scorers that choose how ties are reported.
type TieReporter interface {
	Ties() TiePolicy
}

// ExtenderOf returns the scorer's ply extender, or nil if it has none.
func ExtenderOf(s Scorer) PlyExtender {
	if extender, ok := s.(PlyExtender); ok {
		return extender
	}
	return nil
}

// TiesOf returns the scorer's tie policy, defaulting to TieFirst.
func TiesOf(s Scorer) TiePolicy {
	if reporter, ok := s.(TieReporter); ok {
		return reporter.Ties()
	}
	return TieFirst
}

// Players lists the players present in any of the score maps, sorted.
func Players(scores ...Scores) []string {
	players := lo.Uniq(lo.FlatMap(scores, func(s Scores, _ int) []string {
		return lo.Keys(s)
	}))
	slices.Sort(players)
	return players
}
