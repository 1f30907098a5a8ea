package history

import "reflect"

// Equal reports whether a and b are opaque-equal: both values are
// comparable and == holds on them. Values that cannot be compared with ==
// (slices, maps, funcs, or structs and interfaces holding them) are never
// equal, not even to themselves.
func Equal[V any](a, b V) bool {
	va := reflect.ValueOf(any(a))
	vb := reflect.ValueOf(any(b))

	// Nil interfaces carry no dynamic value.
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return any(a) == any(b)
}
