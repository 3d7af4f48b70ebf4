package live

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/loomui-dev/loom/pkg/bind"
	"github.com/loomui-dev/loom/pkg/dom"
	"github.com/loomui-dev/loom/pkg/loom"
	"github.com/loomui-dev/loom/pkg/protocol"
)

// frameSink collects every frame a session writes.
type frameSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (fs *frameSink) write(msg []byte) error {
	fs.mu.Lock()
	fs.frames = append(fs.frames, msg)
	fs.mu.Unlock()
	return nil
}

func (fs *frameSink) batches(t *testing.T) []protocol.PatchBatch {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]protocol.PatchBatch, 0, len(fs.frames))
	for _, msg := range fs.frames {
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		if frame.Type != protocol.FramePatches {
			t.Fatalf("frame type = %v, want Patches", frame.Type)
		}
		b, err := protocol.DecodePatchBatch(frame.Payload)
		if err != nil {
			t.Fatalf("DecodePatchBatch: %v", err)
		}
		out = append(out, b)
	}
	return out
}

func TestDispatchSendsOneFrame(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}
	s.setSink(sink.write)

	txt := s.doc.Text("before")
	s.doc.Root().AppendChild(txt)
	s.buf.drain()

	s.Handle("set", func(evt protocol.Event) {
		txt.SetText(evt.Value)
	})
	s.Dispatch(context.Background(), protocol.Event{Name: "set", Value: "after"})

	batches := sink.batches(t)
	if len(batches) != 1 {
		t.Fatalf("got %d frames, want 1", len(batches))
	}
	b := batches[0]
	if b.Seq != 1 {
		t.Errorf("seq = %d, want 1", b.Seq)
	}
	if len(b.Patches) != 1 {
		t.Fatalf("got %d patches, want 1", len(b.Patches))
	}
	p := b.Patches[0]
	if p.Op != uint8(dom.PatchSetText) || p.Value != "after" {
		t.Errorf("patch = %+v, want SetText %q", p, "after")
	}
}

func TestDispatchCoalescesCellWrites(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}
	s.setSink(sink.write)

	count := loom.NewOn(s.sched, 0)
	txt := s.doc.Text("")
	s.doc.Root().AppendChild(txt)
	bind.Text(txt, count, nil)
	s.buf.drain()

	s.Handle("bump", func(protocol.Event) {
		count.Set(1)
		count.Set(2)
		count.Set(3)
	})
	s.Dispatch(context.Background(), protocol.Event{Name: "bump"})

	batches := sink.batches(t)
	if len(batches) != 1 {
		t.Fatalf("got %d frames, want 1", len(batches))
	}
	ps := batches[0].Patches
	if len(ps) != 1 {
		t.Fatalf("got %d patches, want 1 (writes coalesce per turn)", len(ps))
	}
	if ps[0].Value != "3" {
		t.Errorf("text = %q, want %q", ps[0].Value, "3")
	}
}

func TestDispatchUnknownEventSendsNothing(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}
	s.setSink(sink.write)

	s.Dispatch(context.Background(), protocol.Event{Name: "missing"})

	if len(sink.frames) != 0 {
		t.Errorf("got %d frames, want 0", len(sink.frames))
	}
}

func TestDispatchNoMutationSendsNothing(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}
	s.setSink(sink.write)

	s.Handle("noop", func(protocol.Event) {})
	s.Dispatch(context.Background(), protocol.Event{Name: "noop"})

	if len(sink.frames) != 0 {
		t.Errorf("got %d frames, want 0", len(sink.frames))
	}
}

func TestBootstrapSendsSnapshot(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}
	s.setSink(sink.write)

	el := s.doc.Element("p")
	el.AppendChild(s.doc.Text("hello"))
	s.doc.Root().AppendChild(el)

	s.bootstrap()

	batches := sink.batches(t)
	if len(batches) != 1 {
		t.Fatalf("got %d frames, want 1", len(batches))
	}
	b := batches[0]
	if b.Seq != 0 {
		t.Errorf("seq = %d, want 0", b.Seq)
	}
	if len(b.Patches) != 1 || b.Patches[0].Op != uint8(dom.PatchInsertNode) {
		t.Fatalf("patches = %+v, want single InsertNode", b.Patches)
	}
	if !strings.Contains(b.Patches[0].Value, "<p>hello</p>") {
		t.Errorf("snapshot = %q, want it to contain <p>hello</p>", b.Patches[0].Value)
	}
}

func TestBootstrapDiscardsMountPatches(t *testing.T) {
	s := NewSession(nil, nil, nil)
	sink := &frameSink{}

	s.doc.Root().AppendChild(s.doc.Text("mounted"))
	s.setSink(sink.write)
	s.bootstrap()

	batches := sink.batches(t)
	if len(batches) != 1 {
		t.Fatalf("got %d frames, want 1", len(batches))
	}
	// Mount-time mutations ride in the snapshot, not as patches.
	if got := len(batches[0].Patches); got != 1 {
		t.Errorf("got %d patches, want 1", got)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := NewSession(nil, nil, nil)
	closed := 0
	s.OnClose(func() { closed++ })
	s.Close()
	s.Close()
	if closed != 1 {
		t.Errorf("close hook ran %d times, want 1", closed)
	}

	s.Handle("x", func(protocol.Event) {})
	s.Dispatch(context.Background(), protocol.Event{Name: "x"})
}

func TestSessionIDsUnique(t *testing.T) {
	a := NewSession(nil, nil, nil)
	b := NewSession(nil, nil, nil)
	if a.ID() == b.ID() {
		t.Errorf("two sessions share id %q", a.ID())
	}
	if a.ID() == "" {
		t.Error("empty session id")
	}
}
