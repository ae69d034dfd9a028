package common

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an empty Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}
