package loom

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Source is the type-erased view of a cell, used by static watch bindings,
// the dynamic tracker, and the DOM binders, which all operate over
// heterogeneous cells.
type Source interface {
	// ID returns the cell's unique identifier.
	ID() uint64

	// AnyValue returns the current value without tracking.
	AnyValue() any

	// SubscribeAny registers a subscriber invoked with the cell's value at
	// flush time. The returned unsubscribe is idempotent.
	SubscribeAny(fn func(any)) func()

	// scheduler reports the scheduler this cell's notifications flow
	// through, so bindings can place derived cells on the same one.
	scheduler() *Scheduler
}

// subscriber is one (cell, callback) edge.
type subscriber struct {
	id uint64
	fn func(any)
}

// cellBase carries the type-erased half of a cell: identity, the ordered
// subscriber list, and the per-turn scheduled flag.
type cellBase struct {
	id    uint64
	sched *Scheduler

	// self is the owning Cell as a flusher; set once at construction.
	self flusher

	subMu sync.Mutex
	subs  []subscriber

	scheduled atomic.Bool
}

// addSubscriber appends a callback and returns its idempotent unsubscribe.
// Order is preserved: subscribers are invoked in subscription order, and
// removal shifts rather than swaps.
func (b *cellBase) addSubscriber(fn func(any)) func() {
	sid := nextID()

	b.subMu.Lock()
	b.subs = append(b.subs, subscriber{id: sid, fn: fn})
	b.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.removeSubscriber(sid)
		})
	}
}

func (b *cellBase) removeSubscriber(sid uint64) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for i, sub := range b.subs {
		if sub.id == sid {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// schedule queues the cell for the next flush. The CAS makes repeat writes
// within one turn coalesce to a single queue entry.
func (b *cellBase) schedule() {
	if b.scheduled.CompareAndSwap(false, true) {
		b.sched.enqueue(b.self)
	}
}

func (b *cellBase) clearScheduled() {
	b.scheduled.Store(false)
}

// snapshotSubs copies the subscriber list so notification runs without the
// lock held. A subscriber added mid-flush sees only future turns.
func (b *cellBase) snapshotSubs() []subscriber {
	b.subMu.Lock()
	out := make([]subscriber, len(b.subs))
	copy(out, b.subs)
	b.subMu.Unlock()
	return out
}

// Cell is a reactive value container. Reading it inside an active
// recording scope registers it as a dependency of the surrounding
// derivation; writing it schedules a coalesced notification.
type Cell[T any] struct {
	base cellBase

	mu    sync.RWMutex
	value T

	// equal overrides ShallowEqual for this cell when non-nil.
	equal func(T, T) bool
}

// New creates a cell on the default scheduler. Creation itself notifies
// nobody: the initial value is not a write.
func New[T any](initial T) *Cell[T] {
	return NewOn(defaultScheduler, initial)
}

// NewOn creates a cell whose notifications flow through the given
// scheduler.
func NewOn[T any](s *Scheduler, initial T) *Cell[T] {
	c := &Cell[T]{value: initial}
	c.base.id = nextID()
	c.base.sched = s
	c.base.self = c
	return c
}

// ID returns the cell's unique identifier.
func (c *Cell[T]) ID() uint64 {
	return c.base.id
}

// Get returns the current value. When called inside an active recording
// scope the cell registers itself as a dependency; Get has no other side
// effects.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	v := c.value
	c.mu.RUnlock()

	recordRead(c)
	return v
}

// Peek returns the current value without registering a dependency.
func (c *Cell[T]) Peek() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set writes a new value. A value shallow-equal to the current one
// (value equality for scalars, one level of element comparison for
// slices and maps) schedules no notification. The check is shallow:
// mutating the inside of a held object does not notify.
//
// Repeated Sets within one turn collapse to a single subscriber
// invocation carrying the final value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	changed := !c.equals(c.value, v)
	if changed {
		c.value = v
	}
	c.mu.Unlock()

	if changed {
		c.base.schedule()
	}
}

// Update applies fn to the current value and writes the result, with the
// same equality short-circuit as Set.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	next := fn(c.value)
	changed := !c.equals(c.value, next)
	if changed {
		c.value = next
	}
	c.mu.Unlock()

	if changed {
		c.base.schedule()
	}
}

// Subscribe registers fn to be invoked with the cell's value at flush
// time. Subscribers run in subscription order; a panic in one is logged
// and does not prevent the rest from running. The returned unsubscribe is
// idempotent and never panics.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	return c.base.addSubscriber(func(v any) {
		fn(v.(T))
	})
}

// SubscribeAny implements Source.
func (c *Cell[T]) SubscribeAny(fn func(any)) func() {
	return c.base.addSubscriber(fn)
}

// AnyValue implements Source; it reads without tracking.
func (c *Cell[T]) AnyValue() any {
	return c.Peek()
}

// WithEquals configures a custom equality function, replacing the shallow
// default. Returns the cell for chaining at construction.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return ShallowEqual(any(a), any(b))
}

func (c *Cell[T]) scheduler() *Scheduler {
	return c.base.sched
}

// clearScheduled implements the scheduler's flusher. base is a named
// field, not embedded, so the method does not promote on its own.
func (c *Cell[T]) clearScheduled() {
	c.base.clearScheduled()
}

// flushNotify implements the scheduler's flusher: deliver the value as it
// is now, isolating subscriber panics so one fault cannot starve the
// remaining subscribers of this cell or of other cells in the turn.
func (c *Cell[T]) flushNotify() {
	v := c.Peek()
	for _, sub := range c.base.snapshotSubs() {
		invokeSubscriber(sub, v, c.base.sched.logger)
	}
}

func invokeSubscriber(sub subscriber, v any, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("subscriber panicked during flush; continuing",
				"subscriber", sub.id, "panic", r)
		}
	}()
	sub.fn(v)
}

var _ Source = (*Cell[int])(nil)
var _ flusher = (*Cell[int])(nil)
