package loom

import (
	"log/slog"
	"sync"
)

// maxFlushPasses bounds the number of drain passes in one flush so a write
// cycle (a subscriber writing the cell that notified it) cannot spin the
// scheduler forever.
const maxFlushPasses = 1000

// flusher is the scheduler's view of a scheduled cell.
type flusher interface {
	// flushNotify invokes the cell's subscribers with its value at flush
	// time, not the value at schedule time.
	flushNotify()

	// clearScheduled resets the per-turn coalescing flag so a subsequent
	// write schedules a fresh pass.
	clearScheduled()
}

// Scheduler coalesces cell notifications. A cell written several times in
// one turn is queued once; Flush delivers a single notification per cell
// carrying the final value.
//
// The model is single-threaded and cooperative: nothing flushes until the
// owning loop calls Flush (or wraps work in Turn), mirroring a deferred
// microtask pass after the synchronous stack unwinds.
type Scheduler struct {
	mu       sync.Mutex
	queue    []flusher
	flushing bool
	logger   *slog.Logger
}

// NewScheduler creates a scheduler. A nil logger defaults to slog.Default.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// defaultScheduler serves cells created with New.
var defaultScheduler = NewScheduler(nil)

// Default returns the process-wide scheduler used by New.
func Default() *Scheduler {
	return defaultScheduler
}

// enqueue adds a cell to the pending queue. The caller has already won the
// cell's scheduled CAS, so each cell appears at most once per turn.
func (s *Scheduler) enqueue(f flusher) {
	s.mu.Lock()
	s.queue = append(s.queue, f)
	s.mu.Unlock()
}

// Flush runs one scheduler turn: every pending cell notifies its
// subscribers once with its current value. Writes performed by those
// subscribers extend the same turn via additional drain passes, so a chain
// of derived cells settles before Flush returns. Re-entrant Flush calls
// are no-ops; the outer flush picks up anything they would have drained.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	for pass := 0; ; pass++ {
		s.mu.Lock()
		pending := s.queue
		s.queue = nil
		s.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		if pass >= maxFlushPasses {
			s.logger.Error("scheduler flush aborted: notification cycle exceeded pass limit",
				"passes", pass, "pending", len(pending))
			for _, f := range pending {
				f.clearScheduled()
			}
			return
		}

		for _, f := range pending {
			// Clear before notifying so a write inside a subscriber
			// re-schedules the cell for the next pass.
			f.clearScheduled()
			f.flushNotify()
		}
	}
}

// Turn runs fn and then flushes: one cooperative-scheduler turn. All writes
// inside fn coalesce into the single notification pass at the end.
func (s *Scheduler) Turn(fn func()) {
	fn()
	s.Flush()
}

// Flush flushes the default scheduler.
func Flush() {
	defaultScheduler.Flush()
}

// Turn runs fn as one turn of the default scheduler.
func Turn(fn func()) {
	defaultScheduler.Turn(fn)
}
