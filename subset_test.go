package seqtools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubsetBasics(t *testing.T) {
	base := &sliceIndexable[string]{values: []string{"a", "b", "c", "d", "e"}, failAt: -1}
	s := NewSubset[string](base, []int{4, 0, 2})
	require.Equal(t, 3, s.Len())

	got := make([]string, s.Len())
	for i := range got {
		v, err := s.Get(i)
		require.NoError(t, err)
		got[i] = v
	}
	require.Equal(t, []string{"e", "a", "c"}, got)
}

func TestSubsetOfSubsetCollapses(t *testing.T) {
	base := &sliceIndexable[int]{values: []int{10, 20, 30, 40, 50}, failAt: -1}
	first := NewSubset[int](base, []int{4, 3, 2, 1, 0}) // reversed
	second := NewSubset[int](first, []int{0, 2, 4})     // picks first[0], first[2], first[4]

	require.Same(t, base, second.base)

	got := make([]int, second.Len())
	for i := range got {
		v, err := second.Get(i)
		require.NoError(t, err)
		got[i] = v
	}
	require.Equal(t, []int{50, 30, 10}, got)
}

func TestSubsetPropagatesFailure(t *testing.T) {
	failure := errorSentinel{}
	base := &sliceIndexable[int]{values: []int{1, 2, 3}, failAt: 1, err: failure}
	s := NewSubset[int](base, []int{2, 1, 0})

	_, err := s.Get(1) // indexes[1] == 1, the failing base index
	require.ErrorIs(t, err, failure)
}

type errorSentinel struct{}

func (errorSentinel) Error() string { return "sentinel failure" }
