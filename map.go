package seqtools

// Map is a lazy element-wise transform view: Get(i) returns fn(base.Get(i)),
// computed fresh on every call (never memoized), matching the Python
// smap()'s semantics of re-invoking the transform on every read,
// including repeated reads of the same index.
type Map[T, U any] struct {
	base Indexable[T]
	fn   func(T) (U, error)
}

// NewMap returns a view over arr where each element is fn(arr[i]),
// evaluated on demand.
func NewMap[T, U any](arr Indexable[T], fn func(T) (U, error)) *Map[T, U] {
	return &Map[T, U]{base: arr, fn: fn}
}

func (m *Map[T, U]) Len() int { return m.base.Len() }

func (m *Map[T, U]) Get(i int) (U, error) {
	v, err := m.base.Get(i)
	if err != nil {
		var zero U
		return zero, err
	}
	return m.fn(v)
}
