package searcher

import (
	"context"
	"runtime"
	"time"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/scoring"
	"gamesearch/tree"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(e *Expectimax)

// Expectimax searches one tree. It is not safe to run two searches on the
// same Expectimax at once; give concurrent players their own instance.
type Expectimax struct {
	scorer   scoring.Scorer
	tree     *tree.Tree
	minPlies int
	maxPlies int
	minThink time.Duration
	maxThink time.Duration
	ties     scoring.TiePolicy
	logger   zerolog.Logger
	metrics  metrics.Collector
	onPly    PlyListener
}

// WithMinPlies sets the plies searched regardless of time and cancellation.
func WithMinPlies(plies int) Option {
	return func(e *Expectimax) {
		if plies > 0 {
			e.minPlies = plies
		}
	}
}

// WithMaxPlies caps the deepening.
func WithMaxPlies(plies int) Option {
	return func(e *Expectimax) {
		if plies > 0 {
			e.maxPlies = plies
		}
	}
}

// WithMinThinkTime keeps deepening until the duration has elapsed.
func WithMinThinkTime(duration time.Duration) Option {
	return func(e *Expectimax) {
		if duration > 0 {
			e.minThink = duration
		}
	}
}

// WithMaxThinkTime stops starting new plies once the duration has elapsed.
// A ply already running is finished.
func WithMaxThinkTime(duration time.Duration) Option {
	return func(e *Expectimax) {
		if duration > 0 {
			e.maxThink = duration
		}
	}
}

// WithTiePolicy overrides the tie policy reported by the scorer.
func WithTiePolicy(policy scoring.TiePolicy) Option {
	return func(e *Expectimax) {
		e.ties = policy
	}
}

func WithTree(t *tree.Tree) Option {
	return func(e *Expectimax) {
		if t != nil {
			e.tree = t
		}
	}
}

func WithCache(cache tree.Cache) Option {
	return func(e *Expectimax) {
		if cache != nil {
			e.tree = tree.New(cache)
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Expectimax) {
		e.logger = logger
	}
}

func WithMetrics() Option {
	return func(e *Expectimax) {
		e.metrics = metrics.NewCollector()
	}
}

func WithPlyListener(listener PlyListener) Option {
	return func(e *Expectimax) {
		e.onPly = listener
	}
}

func NewExpectimax(scorer scoring.Scorer, options ...Option) *Expectimax {
	if scorer == nil {
		panic("Must specify a scorer")
	}
	e := &Expectimax{ // Default values
		scorer:   scorer,
		minPlies: DefaultMinPlies,
		ties:     scoring.TiesOf(scorer),
		logger:   log.Logger,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	if e.maxPlies <= 0 && e.maxThink <= 0 && e.minThink <= 0 {
		panic("Must specify search plies or think time")
	}
	if e.maxPlies > 0 && e.maxPlies < e.minPlies {
		e.maxPlies = e.minPlies
	}
	if e.tree == nil {
		e.tree = tree.New(tree.NewMapCache(
			tree.WithCapacity(tree.DefaultCapacity(DefaultMemoryFraction)),
			tree.WithCacheLogger(e.logger),
		))
	}
	return e
}

func (e *Expectimax) Tree() *tree.Tree {
	return e.tree
}

// Search deepens one ply at a time from the state and returns the mainline of
// the deepest completed ply. Cancellation is observed between plies only, so
// the result always covers at least the minimum plies.
func (e *Expectimax) Search(ctx context.Context, state game.State) (*tree.Mainline, metrics.SearchMetric) {
	return e.search(ctx, state, nil)
}

// FindNextMove returns the first move of the best line, nil if the state is terminal.
func (e *Expectimax) FindNextMove(ctx context.Context, state game.State) game.Move {
	mainline, _ := e.Search(ctx, state)
	return mainline.Move()
}

func (e *Expectimax) search(ctx context.Context, state game.State, publish PlyListener) (*tree.Mainline, metrics.SearchMetric) {
	id := uuid.NewString()
	logger := e.logger.With().Str("search", id).Logger()
	e.metrics.Start(id)
	start := time.Now()

	var best *tree.Mainline
	cancelled := false
	for ply := 1; ; ply++ {
		if !e.deepen(ctx, ply, time.Since(start)) {
			cancelled = ctx.Err() != nil
			break
		}
		// Evictions happen before the ply so the line just stored stays cached
		e.tree.Trim()

		pass := &pass{scorer: e.scorer, ties: e.ties, extender: scoring.ExtenderOf(e.scorer), metrics: e.metrics}
		best = pass.expand(e.tree.GetOrAdd(state), ply)
		e.metrics.AddPly()
		logger.Debug().
			Int("ply", ply).
			Int("depth", best.Depth()).
			Bool("exact", best.FullyDetermined()).
			Interface("move", best.Move()).
			Msg("completed-ply")

		if publish != nil {
			publish(ply, best)
		}
		if e.onPly != nil {
			e.onPly(ply, best)
		}
		if best.FullyDetermined() {
			break
		}
		runtime.Gosched()
	}

	e.metrics.SetCancelled(cancelled)
	e.metrics.SetCacheSize(e.tree.Len())
	metric := e.metrics.Complete()
	metric.ID = id
	metric.Depth = best.Depth()
	metric.FullyDetermined = best.FullyDetermined()
	metric.Cancelled = cancelled

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Stringer("mainline", best).
		Bool("cancelled", cancelled).
		Int("cached", e.tree.Len()).
		Msg("search-finished")
	return best, metric
}

// deepen decides whether the given ply should be searched.
func (e *Expectimax) deepen(ctx context.Context, ply int, elapsed time.Duration) bool {
	if ply <= e.minPlies {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	if e.maxPlies > 0 && ply > e.maxPlies {
		return false
	}
	if e.minThink > 0 && elapsed < e.minThink {
		return true
	}
	if e.maxThink > 0 {
		return elapsed < e.maxThink
	}
	// Only a ply cap or an elapsed minimum think time remains
	return e.maxPlies > 0
}
