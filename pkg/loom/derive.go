package loom

import (
	"log/slog"
	"sync"
)

// derivation is the dynamic dependency tracker behind Derive. It owns the
// result cell and the live subscription set; after every recompute the
// subscription set equals exactly the cells read during that pass.
type derivation[R any] struct {
	fn  func() R
	out *Cell[R]

	mu sync.Mutex

	// subs maps cell ID to that subscription's unsubscribe.
	subs map[uint64]func()

	// computing guards against re-entrant recompute of the same
	// derivation (a cycle through its own result cell).
	computing bool

	logger *slog.Logger
}

// Derive creates a lazily-tracked derived cell on the default scheduler.
// See DeriveOn.
func Derive[R any](fn func() R) *Cell[R] {
	return DeriveOn(defaultScheduler, fn)
}

// DeriveOn evaluates fn once immediately, recording every cell read during
// evaluation as a dependency, and returns a cell holding the result. When
// any recorded dependency changes, fn is re-evaluated and the dependency
// set is rebuilt from scratch: cells read only inside a branch not taken
// this pass are unsubscribed, so mutating them later triggers nothing.
//
// A panic during the first evaluation propagates to the caller. Panics in
// re-triggered evaluations are caught and logged, leaving the previous
// result in place, so one bad dependency cannot wedge unrelated parts of
// the graph. Either way the recording scope is correctly unwound.
func DeriveOn[R any](s *Scheduler, fn func() R) *Cell[R] {
	d := &derivation[R]{
		fn:     fn,
		subs:   make(map[uint64]func()),
		logger: s.logger,
	}

	// First pass: panics propagate, tracking still unwinds via defer.
	v, _ := d.evaluate(true)
	d.out = NewOn(s, v)
	return d.out
}

// recompute is the subscription callback for every dependency.
func (d *derivation[R]) recompute() {
	v, ok := d.evaluate(false)
	if ok {
		d.out.Set(v)
	}
}

// evaluate runs one tracked pass of fn and re-syncs subscriptions to the
// set of cells actually read. Reports ok=false when the pass failed or was
// re-entrant.
func (d *derivation[R]) evaluate(first bool) (result R, ok bool) {
	d.mu.Lock()
	if d.computing {
		// Re-entrant read of a derivation mid-recompute; the caller gets
		// the last committed value from the result cell.
		d.mu.Unlock()
		d.logger.Warn("re-entrant recompute of derivation detected; skipping")
		return result, false
	}
	d.computing = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.computing = false
		d.mu.Unlock()
	}()

	scope := pushScope()
	failed := false
	func() {
		defer popScope(scope)
		if !first {
			defer func() {
				if r := recover(); r != nil {
					failed = true
					d.logger.Error("derivation evaluation panicked; keeping previous value",
						"panic", r)
				}
			}()
		}
		result = d.fn()
	}()

	d.syncSubscriptions(scope.reads)
	return result, !failed
}

// syncSubscriptions diffs the freshly recorded read set against the live
// subscription set: stale subscriptions are removed before any future
// mutation can fire them, newly read cells are added.
func (d *derivation[R]) syncSubscriptions(reads map[uint64]Source) {
	d.mu.Lock()
	stale := make([]func(), 0)
	for id, unsub := range d.subs {
		if _, still := reads[id]; !still {
			stale = append(stale, unsub)
			delete(d.subs, id)
		}
	}
	fresh := make([]Source, 0)
	for id, src := range reads {
		if _, have := d.subs[id]; !have {
			// Reserve the slot; the real unsubscribe lands below, outside
			// the lock.
			d.subs[id] = nil
			fresh = append(fresh, src)
		}
	}
	d.mu.Unlock()

	for _, unsub := range stale {
		unsub()
	}
	for _, src := range fresh {
		unsub := src.SubscribeAny(func(any) {
			d.recompute()
		})
		d.mu.Lock()
		if _, have := d.subs[src.ID()]; have {
			d.subs[src.ID()] = unsub
		} else {
			// Pruned while we were subscribing.
			d.mu.Unlock()
			unsub()
			continue
		}
		d.mu.Unlock()
	}
}
