package loom

import (
	"math"
	"testing"
)

func TestShallowEqualScalars(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"ints equal", 1, 1, true},
		{"ints differ", 1, 2, false},
		{"strings equal", "x", "x", true},
		{"bools", true, false, false},
		{"nil both", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"different types", 1, "1", false},
		{"NaN equals NaN", math.NaN(), math.NaN(), true},
		{"negative zero distinct", math.Copysign(0, -1), 0.0, false},
		{"positive zero equal", 0.0, 0.0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShallowEqual(tc.a, tc.b); got != tc.want {
				t.Errorf("ShallowEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestShallowEqualSlices(t *testing.T) {
	if !ShallowEqual([]int{1, 2}, []int{1, 2}) {
		t.Error("element-wise equal slices should compare equal")
	}
	if ShallowEqual([]int{1, 2}, []int{1, 3}) {
		t.Error("differing elements should not compare equal")
	}
	if ShallowEqual([]int{1}, []int{1, 2}) {
		t.Error("differing lengths should not compare equal")
	}

	// One level only: nested slices compare by identity.
	inner := []int{1}
	if !ShallowEqual([][]int{inner}, [][]int{inner}) {
		t.Error("shared nested slice should compare equal by identity")
	}
	if ShallowEqual([][]int{{1}}, [][]int{{1}}) {
		t.Error("distinct nested slices must not compare equal (shallow, not deep)")
	}
}

func TestShallowEqualMaps(t *testing.T) {
	if !ShallowEqual(map[string]int{"a": 1}, map[string]int{"a": 1}) {
		t.Error("key-wise equal maps should compare equal")
	}
	if ShallowEqual(map[string]int{"a": 1}, map[string]int{"a": 2}) {
		t.Error("differing values should not compare equal")
	}
	if ShallowEqual(map[string]int{"a": 1}, map[string]int{"b": 1}) {
		t.Error("differing keys should not compare equal")
	}

	m := map[string]int{"a": 1}
	if !ShallowEqual(m, m) {
		t.Error("same map identity should compare equal")
	}
}

func TestShallowEqualFuncs(t *testing.T) {
	f := func() {}
	if ShallowEqual(f, f) {
		t.Error("funcs never compare equal")
	}
}

// A struct type can be comparable while a value of it is not: an
// interface field holding a slice makes == panic at runtime. The check
// must report not-equal instead of crashing.
func TestShallowEqualUncomparableDynamicValue(t *testing.T) {
	type box struct{ V any }

	if ShallowEqual(box{V: []int{1}}, box{V: []int{1}}) {
		t.Error("boxes holding distinct slices must not compare equal")
	}
	if ShallowEqual(box{V: []int{1}}, box{V: 1}) {
		t.Error("slice-holding box must not equal int-holding box")
	}
	if !ShallowEqual(box{V: 1}, box{V: 1}) {
		t.Error("boxes holding equal comparable values should compare equal")
	}

	// The same values must pass through Set without a panic escaping.
	s := NewScheduler(nil)
	c := NewOn(s, box{V: []int{1}})
	rec := &recordingSub{}
	c.Subscribe(func(v box) { rec.fn(v) })

	s.Turn(func() { c.Set(box{V: []int{2}}) })
	if rec.count() != 1 {
		t.Errorf("uncomparable-value write should notify once, got %d", rec.count())
	}
}
