package loom

import "sync"

// Binding is a static watch over explicitly named source cells.
//
// Its mode is classified exactly once, at creation: if the first callback
// invocation returns a non-nil result the binding is computed and exposes
// a derived cell; if it returns nil the binding is a side effect. The
// classification never changes for the life of the binding.
type Binding struct {
	mu sync.Mutex

	fn      func(next, prev []any) any
	sources []Source
	unsubs  []func()

	computed bool
	out      *Cell[any]

	// last is the most recently observed source-value tuple.
	last []any

	// lastResult is the cached computed result (computed mode only).
	lastResult any

	released bool
}

// Watch subscribes fn to the given source cells.
//
// fn is invoked immediately against the current source values with a nil
// prev tuple; that first call fixes the binding's mode. On any source
// notification the full tuple is re-read and compared shallowly against
// the last observed tuple; an equal tuple skips the callback entirely,
// so several sources firing in the same turn without changing the tuple
// cost nothing.
//
// In computed mode a result shallow-equal to the cached one is not
// written to the derived cell, so downstream subscribers see no
// notification cascade for a no-op recompute.
func Watch(fn func(next, prev []any) any, sources ...Source) *Binding {
	b := &Binding{
		fn:      fn,
		sources: sources,
		last:    snapshotSources(sources),
	}

	first := fn(b.last, nil)
	if first != nil {
		b.computed = true
		b.lastResult = first
		b.out = NewOn(bindingScheduler(sources), first)
	}

	b.unsubs = make([]func(), 0, len(sources))
	for _, src := range sources {
		b.unsubs = append(b.unsubs, src.SubscribeAny(func(any) {
			b.onSource()
		}))
	}
	return b
}

// Cell returns the derived cell and true in computed mode, nil and false
// in effect mode.
func (b *Binding) Cell() (*Cell[any], bool) {
	return b.out, b.computed
}

// Computed reports the binding's mode.
func (b *Binding) Computed() bool {
	return b.computed
}

// Release unsubscribes from every source. Idempotent; a released binding
// never fires again, though a computed binding's derived cell remains
// readable at its last value.
func (b *Binding) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

func (b *Binding) onSource() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	next := snapshotSources(b.sources)
	if tupleShallowEqual(next, b.last) {
		b.mu.Unlock()
		return
	}
	prev := b.last
	b.last = next
	computed := b.computed
	lastResult := b.lastResult
	b.mu.Unlock()

	result := b.fn(next, prev)
	if !computed {
		return
	}
	if ShallowEqual(result, lastResult) {
		return
	}

	b.mu.Lock()
	b.lastResult = result
	b.mu.Unlock()
	b.out.Set(result)
}

func snapshotSources(sources []Source) []any {
	vals := make([]any, len(sources))
	for i, src := range sources {
		vals[i] = src.AnyValue()
	}
	return vals
}

func tupleShallowEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ShallowEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// bindingScheduler picks the scheduler for a binding's derived cell: the
// first source's scheduler, or the default when there are no sources.
func bindingScheduler(sources []Source) *Scheduler {
	if len(sources) > 0 {
		return sources[0].scheduler()
	}
	return defaultScheduler
}

// Map is the typed computed-mode sugar over one source: a derived cell
// holding fn of the source's value, updated through the scheduler with
// the usual equality skip.
func Map[T, R any](src *Cell[T], fn func(T) R) *Cell[R] {
	out := NewOn(src.scheduler(), fn(src.Peek()))
	src.SubscribeAny(func(v any) {
		out.Set(fn(v.(T)))
	})
	return out
}

// Map2 derives a cell from two sources.
func Map2[A, B, R any](a *Cell[A], b *Cell[B], fn func(A, B) R) *Cell[R] {
	out := NewOn(a.scheduler(), fn(a.Peek(), b.Peek()))
	recompute := func(any) {
		out.Set(fn(a.Peek(), b.Peek()))
	}
	a.SubscribeAny(recompute)
	b.SubscribeAny(recompute)
	return out
}
