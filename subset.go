package seqtools

// Subset is a reindexed view over a base Indexable: Get(i) reads
// base.Get(indexes[i]).
type Subset[T any] struct {
	base    Indexable[T]
	indexes []int
}

// NewSubset returns a view on sequence reindexed by indexes. If sequence
// is itself a *Subset, the indirection is collapsed so that repeated
// subsetting never nests more than one level deep.
func NewSubset[T any](sequence Indexable[T], indexes []int) *Subset[T] {
	if nested, ok := sequence.(*Subset[T]); ok {
		resolved := make([]int, len(indexes))
		for i, idx := range indexes {
			resolved[i] = nested.indexes[idx]
		}
		return &Subset[T]{base: nested.base, indexes: resolved}
	}
	own := make([]int, len(indexes))
	copy(own, indexes)
	return &Subset[T]{base: sequence, indexes: own}
}

func (s *Subset[T]) Len() int { return len(s.indexes) }

func (s *Subset[T]) Get(i int) (T, error) {
	return s.base.Get(s.indexes[i])
}
