package live

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/loomui-dev/loom/pkg/dom"
	"github.com/loomui-dev/loom/pkg/loom"
	"github.com/loomui-dev/loom/pkg/protocol"
)

// patchBuffer collects the mutations of the current turn.
type patchBuffer struct {
	mu      sync.Mutex
	patches []dom.Patch
}

func (b *patchBuffer) Record(p dom.Patch) {
	b.mu.Lock()
	b.patches = append(b.patches, p)
	b.mu.Unlock()
}

func (b *patchBuffer) drain() []dom.Patch {
	b.mu.Lock()
	out := b.patches
	b.patches = nil
	b.mu.Unlock()
	return out
}

// Session is one connected client: a private document tree, a private
// scheduler, and the handlers its UI registered.
type Session struct {
	id     string
	doc    *dom.Document
	sched  *loom.Scheduler
	buf    *patchBuffer
	logger *slog.Logger

	metrics *Metrics
	tracer  *Tracer

	mu       sync.Mutex
	handlers map[string]func(protocol.Event)
	sink     func([]byte) error
	seq      uint64
	closed   bool
	onClose  []func()

	createdAt time.Time
}

// NewSession creates a session with a fresh document and scheduler.
// metrics and tracer may be nil.
func NewSession(logger *slog.Logger, metrics *Metrics, tracer *Tracer) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:        newSessionID(),
		doc:       dom.NewDocument(),
		sched:     loom.NewScheduler(logger),
		buf:       &patchBuffer{},
		metrics:   metrics,
		tracer:    tracer,
		handlers:  make(map[string]func(protocol.Event)),
		createdAt: time.Now(),
	}
	s.logger = logger.With("session", s.id)
	s.doc.SetRecorder(s.buf)
	return s
}

func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "s-fallback"
	}
	return hex.EncodeToString(b[:])
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns the session's document.
func (s *Session) Document() *dom.Document { return s.doc }

// Scheduler returns the session's scheduler.
func (s *Session) Scheduler() *loom.Scheduler { return s.sched }

// Handle registers a named event handler.
func (s *Session) Handle(name string, fn func(protocol.Event)) {
	s.mu.Lock()
	s.handlers[name] = fn
	s.mu.Unlock()
}

// OnClose registers a cleanup to run when the session closes. Handlers
// run in registration order.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// setSink installs the frame writer; frames produced with no sink
// attached are dropped.
func (s *Session) setSink(fn func([]byte) error) {
	s.mu.Lock()
	s.sink = fn
	s.mu.Unlock()
}

// Dispatch runs one event as one scheduler turn: handler, flush, then one
// patch frame with everything the turn mutated. Unknown event names are
// logged and produce no frame.
func (s *Session) Dispatch(ctx context.Context, evt protocol.Event) {
	s.mu.Lock()
	fn, ok := s.handlers[evt.Name]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("event with no handler", "event", evt.Name)
		return
	}

	var end func(patches int)
	if s.tracer != nil {
		_, span := s.tracer.StartEvent(ctx, evt.Name)
		end = func(patches int) {
			span.SetAttributes(attribute.Int("loom.patches", patches))
			span.End()
		}
	}

	start := time.Now()
	s.sched.Turn(func() {
		fn(evt)
	})
	sent := s.flushPatches()

	if s.metrics != nil {
		s.metrics.EventsTotal.Inc()
		s.metrics.TurnsTotal.Inc()
		s.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	}
	if end != nil {
		end(sent)
	}
}

// flushPatches drains the turn's recorded mutations into one frame.
// Returns the number of patches sent.
func (s *Session) flushPatches() int {
	patches := s.buf.drain()
	if len(patches) == 0 {
		return 0
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	sink := s.sink
	s.mu.Unlock()

	batch := protocol.PatchBatch{Seq: seq, Patches: make([]protocol.WirePatch, len(patches))}
	for i, p := range patches {
		batch.Patches[i] = protocol.FromDOM(p)
	}

	msg, err := protocol.EncodePatchBatch(batch)
	if err != nil {
		s.logger.Error("patch batch encode failed", "error", err)
		return 0
	}
	if sink == nil {
		return len(patches)
	}
	if err := sink(msg); err != nil {
		s.logger.Error("patch frame write failed", "error", err)
		return 0
	}
	if s.metrics != nil {
		s.metrics.PatchesTotal.Add(float64(len(patches)))
		s.metrics.PatchBytesTotal.Add(float64(len(msg)))
	}
	return len(patches)
}

// bootstrap discards mount-time mutations (the client receives the full
// snapshot instead) and sends the snapshot as a seq-0 insert of the whole
// root.
func (s *Session) bootstrap() {
	s.buf.drain()

	batch := protocol.PatchBatch{
		Seq: 0,
		Patches: []protocol.WirePatch{{
			Op:    uint8(dom.PatchInsertNode),
			Value: s.doc.HTML(),
		}},
	}
	msg, err := protocol.EncodePatchBatch(batch)
	if err != nil {
		s.logger.Error("bootstrap encode failed", "error", err)
		return
	}
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		if err := sink(msg); err != nil {
			s.logger.Error("bootstrap write failed", "error", err)
		}
	}
}

// Close marks the session finished. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.sink = nil
	cleanups := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	for _, fn := range cleanups {
		fn()
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
	s.logger.Info("session closed", "lifetime", time.Since(s.createdAt))
}
