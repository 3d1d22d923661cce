package game

// NoPlayer is reported by states and mainlines when nobody is left to act.
const NoPlayer = ""

type StateHash uint64

// State should be immutable - operations on State always return a new copy.
//
// Hash and Equal together define position equivalence: two states that are
// Equal must report the same Hash, even when they are distinct objects.
type State interface {
	// Player returns the player to act, or NoPlayer once the game is over
	Player() string
	// Players lists the players still participating in the game
	Players() []string
	LegalMoves() []Move
	// Play applies the move. Stochastic moves resolve to a single sampled outcome.
	Play(Move) State
	// Outcomes enumerates every weighted result of applying a stochastic move
	Outcomes(Move) []Weighted[State]
	// Winners is empty while the game is ongoing
	Winners() []string
	Hash() StateHash
	Equal(State) bool
}

// Evaluate scores a non-terminal state for the given player between 0
// (certain loss) and 1 (certain win).
type Evaluate func(state State, player string) float64
