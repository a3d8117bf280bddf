package seqtools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countingIndexable counts calls to Get per index, so tests can verify
// cache hits avoid a read-through.
type countingIndexable struct {
	values []int
	calls  map[int]int
}

func newCountingIndexable(values []int) *countingIndexable {
	return &countingIndexable{values: values, calls: make(map[int]int)}
}

func (c *countingIndexable) Len() int { return len(c.values) }

func (c *countingIndexable) Get(i int) (int, error) {
	c.calls[i]++
	return c.values[i], nil
}

func TestCacheHitAvoidsReadThrough(t *testing.T) {
	base := newCountingIndexable([]int{10, 20, 30})
	c := NewCache[int](base, 2)

	v, err := c.Get(0)
	require.NoError(t, err)
	require.Equal(t, 10, v)
	v, err = c.Get(0)
	require.NoError(t, err)
	require.Equal(t, 10, v)

	require.Equal(t, 1, base.calls[0], "second Get(0) should be served from cache")
}

func TestCacheFIFOEviction(t *testing.T) {
	base := newCountingIndexable([]int{10, 20, 30, 40})
	c := NewCache[int](base, 2)

	_, _ = c.Get(0)
	_, _ = c.Get(1)
	_, _ = c.Get(2) // evicts 0, the oldest, not touch-on-hit LRU

	_, _ = c.Get(0) // must read through again, since 0 was evicted
	require.Equal(t, 2, base.calls[0])

	_, _ = c.Get(1) // 1 was in turn evicted when 0 was read back in
	require.Equal(t, 2, base.calls[1])
}

func TestCacheDisabledWhenSizeZero(t *testing.T) {
	base := newCountingIndexable([]int{10, 20})
	c := NewCache[int](base, 0)

	_, _ = c.Get(0)
	_, _ = c.Get(0)
	require.Equal(t, 2, base.calls[0], "size<=0 must disable caching entirely")
}

func TestCacheLenDelegatesToBase(t *testing.T) {
	base := newCountingIndexable([]int{1, 2, 3, 4, 5})
	c := NewCache[int](base, 3)
	require.Equal(t, 5, c.Len())
}
