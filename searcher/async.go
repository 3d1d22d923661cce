package searcher

import (
	"context"
	"sync/atomic"

	"gamesearch/experiments/metrics"
	"gamesearch/game"
	"gamesearch/tree"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Handle follows a search running in the background.
type Handle struct {
	best   atomic.Pointer[tree.Mainline]
	cancel context.CancelFunc
	group  *errgroup.Group
	metric metrics.SearchMetric
}

// Start runs the search on its own goroutine, publishing the mainline of
// every completed ply. The search yields between plies and stops at its
// limits, on Stop, or when ctx is cancelled.
func (e *Expectimax) Start(ctx context.Context, state game.State) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	h := &Handle{cancel: cancel, group: group}

	group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				if cause, ok := r.(error); ok {
					err = errors.WithStack(cause)
				} else {
					err = errors.Errorf("search panicked: %v", r)
				}
			}
		}()

		mainline, metric := e.search(ctx, state, func(_ int, mainline *tree.Mainline) {
			h.best.Store(mainline)
		})
		h.best.Store(mainline)
		h.metric = metric
		return nil
	})
	return h
}

// Best returns the mainline of the deepest ply completed so far, nil before
// the first ply completes.
func (h *Handle) Best() *tree.Mainline {
	return h.best.Load()
}

// Stop asks the search to finish after the current ply.
func (h *Handle) Stop() {
	h.cancel()
}

// Wait blocks until the search is done. A contract violation raised during
// the search is returned as an error.
func (h *Handle) Wait() (*tree.Mainline, metrics.SearchMetric, error) {
	err := h.group.Wait()
	h.cancel()
	return h.best.Load(), h.metric, err
}
