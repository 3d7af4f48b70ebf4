package loom

import (
	"math"
	"reflect"
)

// ShallowEqual reports whether two values are equal one level deep.
//
// The definition is deliberate and fixed:
//   - floats compare by bit pattern, so NaN equals NaN and -0 does not
//     equal +0
//   - other comparable values compare with ==
//   - slices and arrays compare element-wise, each element by the scalar
//     rule above (not recursively)
//   - maps compare key-wise the same way
//   - anything else (funcs, structs containing uncomparable fields) is
//     equal only by reference identity, and funcs never compare equal
//
// "Shallow" means a nested mutation of a held object is invisible to this
// check: writing the same map after mutating a value inside it will not
// notify.
func ShallowEqual(a, b any) bool {
	if sameValue(a, b) {
		return true
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return false
	}
	if av.Type() != bv.Type() {
		return false
	}

	switch av.Kind() {
	case reflect.Slice, reflect.Array:
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !sameValue(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true

	case reflect.Map:
		if av.Len() != bv.Len() {
			return false
		}
		iter := av.MapRange()
		for iter.Next() {
			other := bv.MapIndex(iter.Key())
			if !other.IsValid() {
				return false
			}
			if !sameValue(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}

	return false
}

// sameValue is the scalar rule: bit-pattern equality for floats, == for
// other comparables, reference identity for slices and maps, never equal
// for funcs.
func sameValue(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return math.Float64bits(x) == math.Float64bits(y)
	case float32:
		y, ok := b.(float32)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
			return true
		}
		return math.Float32bits(x) == math.Float32bits(y)
	}

	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta == nil || tb == nil {
		return ta == tb
	}
	if ta != tb {
		return false
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)

	// Type comparability is static; a comparable type can still carry an
	// uncomparable dynamic value (an interface field holding a slice), and
	// == would panic on it. Value.Comparable checks the values themselves.
	if ta.Comparable() {
		if !av.Comparable() || !bv.Comparable() {
			return false
		}
		return a == b
	}

	switch av.Kind() {
	case reflect.Slice:
		return av.Len() == bv.Len() && av.Pointer() == bv.Pointer()
	case reflect.Map:
		return av.Pointer() == bv.Pointer()
	}
	return false
}
