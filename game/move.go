package game

// Move values must be comparable since search nodes index their children by move.
type Move interface {
	// Player returns the player making the move
	Player() string
	// IsStochastic reports whether the move has more than one possible outcome.
	// Deterministic moves skip outcome enumeration.
	IsStochastic() bool
	// Origin returns the state the move was generated from
	Origin() State
}
