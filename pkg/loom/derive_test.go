package loom

import "testing"

func TestDeriveBasic(t *testing.T) {
	s := NewScheduler(nil)
	c := NewOn(s, 2)

	out := DeriveOn(s, func() int { return c.Get() * 3 })
	if out.Peek() != 6 {
		t.Fatalf("initial derived value = %d, want 6", out.Peek())
	}

	s.Turn(func() { c.Set(4) })
	if out.Peek() != 12 {
		t.Errorf("derived value = %d, want 12", out.Peek())
	}
}

func TestDeriveBranchPruning(t *testing.T) {
	s := NewScheduler(nil)
	q := NewOn(s, 1)
	sv := NewOn(s, 10)
	useS := NewOn(s, false)

	recomputes := 0
	out := DeriveOn(s, func() int {
		recomputes++
		if useS.Get() {
			return q.Get() + sv.Get()
		}
		return q.Get()
	})

	if out.Peek() != 1 {
		t.Fatalf("initial value = %d, want 1", out.Peek())
	}

	// sv is not a dependency yet: writing it must not recompute.
	s.Turn(func() { sv.Set(20) })
	if out.Peek() != 1 {
		t.Fatalf("value = %d, want 1 (sv not yet a dependency)", out.Peek())
	}
	if recomputes != 1 {
		t.Fatalf("recomputed %d times, want 1", recomputes)
	}

	s.Turn(func() { useS.Set(true) })
	if out.Peek() != 21 {
		t.Fatalf("value = %d, want 21 after enabling the branch", out.Peek())
	}

	s.Turn(func() { sv.Set(5) })
	if out.Peek() != 6 {
		t.Fatalf("value = %d, want 6 (sv now a live dependency)", out.Peek())
	}

	s.Turn(func() { useS.Set(false) })
	if out.Peek() != 1 {
		t.Fatalf("value = %d, want 1 after disabling the branch", out.Peek())
	}

	// The branch was pruned: sv must be unsubscribed again.
	before := recomputes
	s.Turn(func() { sv.Set(100) })
	if out.Peek() != 1 {
		t.Errorf("value = %d, want 1 (sv dependency must be dropped)", out.Peek())
	}
	if recomputes != before {
		t.Errorf("pruned-branch write caused %d extra recomputes", recomputes-before)
	}
}

func TestDeriveNested(t *testing.T) {
	s := NewScheduler(nil)
	base := NewOn(s, 1)

	inner := DeriveOn(s, func() int { return base.Get() * 2 })
	outer := DeriveOn(s, func() int { return inner.Get() + 1 })

	if outer.Peek() != 3 {
		t.Fatalf("outer = %d, want 3", outer.Peek())
	}

	s.Turn(func() { base.Set(5) })
	if inner.Peek() != 10 {
		t.Errorf("inner = %d, want 10", inner.Peek())
	}
	if outer.Peek() != 11 {
		t.Errorf("outer = %d, want 11", outer.Peek())
	}
}

func TestDeriveDuplicateReadsSingleEdge(t *testing.T) {
	s := NewScheduler(nil)
	c := NewOn(s, 1)

	recomputes := 0
	out := DeriveOn(s, func() int {
		recomputes++
		return c.Get() + c.Get() + c.Get()
	})

	if out.Peek() != 3 {
		t.Fatalf("initial = %d, want 3", out.Peek())
	}

	s.Turn(func() { c.Set(2) })
	if recomputes != 2 {
		t.Errorf("triple read of one cell must record one edge; recomputed %d times, want 2", recomputes)
	}
	if out.Peek() != 6 {
		t.Errorf("value = %d, want 6", out.Peek())
	}
}

func TestDeriveFirstEvaluationPanicPropagates(t *testing.T) {
	s := NewScheduler(nil)

	defer func() {
		if recover() == nil {
			t.Error("construction-time evaluation panic must propagate")
		}
		// Tracking must be unwound: a fresh derivation still works.
		c := NewOn(s, 1)
		out := DeriveOn(s, func() int { return c.Get() })
		if out.Peek() != 1 {
			t.Errorf("tracking corrupted after panic: got %d", out.Peek())
		}
	}()

	DeriveOn(s, func() int { panic("bad expression") })
}

func TestDeriveRetriggeredPanicContained(t *testing.T) {
	s := NewScheduler(nil)
	c := NewOn(s, 1)

	out := DeriveOn(s, func() int {
		v := c.Get()
		if v == 13 {
			panic("unlucky")
		}
		return v
	})

	s.Turn(func() { c.Set(13) })
	// Previous value survives the contained failure.
	if out.Peek() != 1 {
		t.Errorf("value after contained panic = %d, want previous value 1", out.Peek())
	}

	// The graph is not wedged: a good value flows again.
	s.Turn(func() { c.Set(7) })
	if out.Peek() != 7 {
		t.Errorf("value = %d, want 7 after recovery", out.Peek())
	}
}

func TestDerivePanicDoesNotCorruptSiblings(t *testing.T) {
	s := NewScheduler(nil)
	bad := NewOn(s, 1)
	good := NewOn(s, 1)

	DeriveOn(s, func() int {
		if bad.Get() > 1 {
			panic("broken subtree")
		}
		return 0
	})
	healthy := DeriveOn(s, func() int { return good.Get() * 2 })

	s.Turn(func() {
		bad.Set(2)
		good.Set(3)
	})

	if healthy.Peek() != 6 {
		t.Errorf("unrelated derivation affected by sibling panic: got %d, want 6", healthy.Peek())
	}
}

func TestDeriveEqualResultSkipsDownstream(t *testing.T) {
	s := NewScheduler(nil)
	c := NewOn(s, 1)

	out := DeriveOn(s, func() int { return c.Get() % 2 })
	downstream := 0
	out.Subscribe(func(int) { downstream++ })

	// 1 -> 3: parity unchanged, result equal, no downstream write.
	s.Turn(func() { c.Set(3) })
	if downstream != 0 {
		t.Errorf("equal recompute result must not notify downstream, got %d", downstream)
	}

	s.Turn(func() { c.Set(4) })
	if downstream != 1 {
		t.Errorf("changed result should notify once, got %d", downstream)
	}
}
