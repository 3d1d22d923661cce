package tree

import (
	"sync/atomic"

	"gamesearch/game"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Cache memoizes state nodes by state equivalence, not identity. A miss is
// always legal: callers recompute the node.
type Cache interface {
	Set(state game.State, node *StateNode)
	TryGet(state game.State) (*StateNode, bool)
	// Trim may discard entries to bound memory
	Trim()
	Len() int
}

type TrimPolicy int

const (
	// TrimGenerational drops entries untouched since the previous trim once
	// the cache is over capacity, then clears it if that was not enough.
	TrimGenerational TrimPolicy = iota
	// TrimClear empties the whole cache once it is over capacity.
	TrimClear
)

func (p TrimPolicy) String() string {
	if p == TrimClear {
		return "clear"
	}
	return "generational"
}

// ParseTrimPolicy accepts "generational" and "clear".
func ParseTrimPolicy(name string) (TrimPolicy, bool) {
	switch name {
	case "generational", "":
		return TrimGenerational, true
	case "clear":
		return TrimClear, true
	}
	return TrimGenerational, false
}

const (
	// Rough footprint of one cached state node with its moves and mainline
	EstimatedEntryBytes = 512
	MinCapacity         = 1 << 12
	fallbackCapacity    = 1 << 20
)

// DefaultCapacity sizes the cache to a fraction of total system memory.
func DefaultCapacity(fractionOfMemory float64) int {
	total := memory.TotalMemory()
	if total == 0 || fractionOfMemory <= 0 {
		return fallbackCapacity
	}
	return max(MinCapacity, int(fractionOfMemory*float64(total)/EstimatedEntryBytes))
}

type CacheStats struct {
	Entries int
	Lookups uint64
	Hits    uint64
	Inserts uint64
	Trims   uint64
}

type entry struct {
	state   game.State
	node    *StateNode
	touched uint64
}

type CacheOption func(c *MapCache)

func WithCapacity(capacity int) CacheOption {
	return func(c *MapCache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

func WithTrimPolicy(policy TrimPolicy) CacheOption {
	return func(c *MapCache) {
		c.policy = policy
	}
}

func WithCacheLogger(logger zerolog.Logger) CacheOption {
	return func(c *MapCache) {
		c.logger = logger
	}
}

// MapCache buckets entries by state hash and resolves collisions with Equal.
// It is not safe for concurrent use.
type MapCache struct {
	buckets    map[game.StateHash][]*entry
	size       int
	capacity   int
	policy     TrimPolicy
	generation uint64
	logger     zerolog.Logger

	lookups atomic.Uint64
	hits    atomic.Uint64
	inserts atomic.Uint64
	trims   atomic.Uint64
}

func NewMapCache(options ...CacheOption) *MapCache {
	c := &MapCache{ // Default values
		buckets:  make(map[game.StateHash][]*entry),
		capacity: DefaultCapacity(0.25),
		policy:   TrimGenerational,
		logger:   log.Logger,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *MapCache) find(state game.State) *entry {
	for _, e := range c.buckets[state.Hash()] {
		if e.state.Equal(state) {
			return e
		}
	}
	return nil
}

func (c *MapCache) Set(state game.State, node *StateNode) {
	c.inserts.Add(1)
	if e := c.find(state); e != nil {
		e.node = node
		e.touched = c.generation
		return
	}
	hash := state.Hash()
	c.buckets[hash] = append(c.buckets[hash], &entry{state: state, node: node, touched: c.generation})
	c.size++
}

func (c *MapCache) TryGet(state game.State) (*StateNode, bool) {
	c.lookups.Add(1)
	e := c.find(state)
	if e == nil {
		return nil, false
	}
	c.hits.Add(1)
	e.touched = c.generation
	return e.node, true
}

func (c *MapCache) Len() int {
	return c.size
}

func (c *MapCache) Capacity() int {
	return c.capacity
}

func (c *MapCache) Trim() {
	defer func() { c.generation++ }()
	if c.size <= c.capacity {
		return
	}

	before := c.size
	if c.policy == TrimGenerational {
		c.dropStale()
	}
	if c.size > c.capacity {
		c.clear()
	}
	c.trims.Add(1)

	c.logger.Debug().
		Str("policy", c.policy.String()).
		Int("before", before).
		Int("after", c.size).
		Int("capacity", c.capacity).
		Msg("trimmed-transposition-cache")
}

func (c *MapCache) dropStale() {
	for hash, bucket := range c.buckets {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.touched >= c.generation {
				kept = append(kept, e)
			} else {
				c.size--
			}
		}
		if len(kept) == 0 {
			delete(c.buckets, hash)
		} else {
			c.buckets[hash] = kept
		}
	}
}

func (c *MapCache) clear() {
	clear(c.buckets)
	c.size = 0
}

func (c *MapCache) Stats() CacheStats {
	return CacheStats{
		Entries: c.size,
		Lookups: c.lookups.Load(),
		Hits:    c.hits.Load(),
		Inserts: c.inserts.Load(),
		Trims:   c.trims.Load(),
	}
}
