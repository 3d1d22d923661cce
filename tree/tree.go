// Package tree holds the memoized search graph: state nodes, move nodes,
// mainlines and the transposition cache that owns them.
//
// Transpositions and repeated positions make the graph cyclic. Nothing here
// prevents revisiting a node; the search driver's depth budget bounds traversal.
// Nodes are not safe for concurrent mutation: concurrent searches need their
// own Tree.
package tree

import "gamesearch/game"

type Tree struct {
	cache Cache
}

// New builds a tree over the given cache, or a default MapCache if nil.
func New(cache Cache) *Tree {
	if cache == nil {
		cache = NewMapCache()
	}
	return &Tree{cache: cache}
}

// GetOrAdd is the single point of node creation: it returns the cached node
// of an equivalent state, or creates and caches a new one.
func (t *Tree) GetOrAdd(state game.State) *StateNode {
	if node, ok := t.cache.TryGet(state); ok {
		return node
	}
	node := newStateNode(t, state)
	t.cache.Set(state, node)
	return node
}

// Trim lets the cache evict entries. Only call it between searches or plies,
// never while a recursion holds nodes.
func (t *Tree) Trim() {
	t.cache.Trim()
}

func (t *Tree) Len() int {
	return t.cache.Len()
}

func (t *Tree) Cache() Cache {
	return t.cache
}

// Stats reports the cache counters when the cache keeps them, the entry count otherwise.
func (t *Tree) Stats() CacheStats {
	if stats, ok := t.cache.(interface{ Stats() CacheStats }); ok {
		return stats.Stats()
	}
	return CacheStats{Entries: t.cache.Len()}
}
