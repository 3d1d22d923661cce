package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	ID              string
	Duration        time.Duration
	Plies           int // Completed deepening iterations
	Nodes           int // State nodes expanded
	CacheHits       int // Stored mainlines reused
	CacheSize       int
	Depth           int // Depth of the returned mainline
	FullyDetermined bool
	Cancelled       bool
}

type MoveMetric struct {
	Step   int
	Player string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer string
	Winner         string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(id string)
	AddNode()
	AddCacheHit()
	AddPly()
	SetCancelled(value bool)
	SetCacheSize(size int)
	Complete() SearchMetric
}

type collector struct {
	id        string
	startTime time.Time
	plies     atomic.Int32
	nodes     atomic.Int64
	cacheHits atomic.Int64
	cacheSize atomic.Int64
	cancelled atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(id string) {
	m.id = id
	m.startTime = time.Now()
	m.plies.Store(0)
	m.nodes.Store(0)
	m.cacheHits.Store(0)
	m.cacheSize.Store(0)
	m.cancelled.Store(false)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddCacheHit() {
	m.cacheHits.Add(1)
}

func (m *collector) AddPly() {
	m.plies.Add(1)
}

func (m *collector) SetCancelled(value bool) {
	m.cancelled.Store(value)
}

func (m *collector) SetCacheSize(size int) {
	m.cacheSize.Store(int64(size))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		ID:        m.id,
		Duration:  time.Since(m.startTime),
		Plies:     int(m.plies.Load()),
		Nodes:     int(m.nodes.Load()),
		CacheHits: int(m.cacheHits.Load()),
		CacheSize: int(m.cacheSize.Load()),
		Cancelled: m.cancelled.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(id string)         {}
func (m *dummyCollector) AddNode()                {}
func (m *dummyCollector) AddCacheHit()            {}
func (m *dummyCollector) AddPly()                 {}
func (m *dummyCollector) SetCancelled(value bool) {}
func (m *dummyCollector) SetCacheSize(size int)   {}
func (m *dummyCollector) Complete() SearchMetric  { return SearchMetric{} }
