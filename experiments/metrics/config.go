package metrics

import "time"

type AgentKind string

const (
	Searching AgentKind = "search"
	Training  AgentKind = "train"
	Random    AgentKind = "random"
)

type AgentConfig struct {
	ID          int
	Kind        AgentKind
	MinPlies    int
	MaxPlies    int
	MinThink    time.Duration
	MaxThink    time.Duration
	Ties        string
	Decay       float64 // Ply decay factor, 0 to disable
	Misere      bool
	Temperature float64 // Training agents only
}
