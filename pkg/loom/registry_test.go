package loom

import "testing"

func TestRegistryObserveAndRelease(t *testing.T) {
	r := NewRegistry()
	s := NewScheduler(nil)
	c := NewOn(s, 0)

	release := r.Observe(c, "cell", "counter")
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].Kind != "cell" || snap[0].Label != "counter" || snap[0].ID != c.ID() {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	release()
	if r.Len() != 0 {
		t.Errorf("Len after release = %d, want 0", r.Len())
	}

	// Idempotent: releasing again must not remove a re-registered entry.
	r.Observe(c, "cell", "counter")
	release()
	if r.Len() != 1 {
		t.Errorf("stale release removed a fresh entry; Len = %d, want 1", r.Len())
	}
}

func TestRegistryHoldsNoCellReference(t *testing.T) {
	r := NewRegistry()
	s := NewScheduler(nil)

	// Register and drop the cell; only the metadata remains.
	id := func() uint64 {
		c := NewOn(s, 0)
		r.Observe(c, "cell", "ephemeral")
		return c.ID()
	}()

	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].ID != id {
		t.Fatalf("expected metadata for id %d, got %+v", id, snap)
	}
}
