package types

// Pointer is a detached reference that re-resolves its target on demand.
// Holding a Pointer does not keep the target, or the registry it came from, alive.
type Pointer[T any] interface {
	// Dereference re-materializes the target, reporting false when it is gone
	Dereference() (T, bool)
}

// PointerFunc adapts a function to the Pointer interface
type PointerFunc[T any] func() (T, bool)

// Dereference calls f
func (f PointerFunc[T]) Dereference() (T, bool) {
	return f()
}

// Hard returns a pointer that always dereferences to v.
// It suits immutable values that carry no registry state.
func Hard[T any](v T) Pointer[T] {
	return PointerFunc[T](func() (T, bool) { return v, true })
}

// Gone returns a pointer that never dereferences
func Gone[T any]() Pointer[T] {
	return PointerFunc[T](func() (T, bool) {
		var zero T
		return zero, false
	})
}

// DereferenceAll dereferences every pointer, failing if any one is gone
func DereferenceAll[T any](ptrs []Pointer[T]) ([]T, bool) {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		v, ok := p.Dereference()
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}
