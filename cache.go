package seqtools

import "container/list"

// Cache wraps an Indexable to memoize the most recently read items,
// evicting in insertion order once the cache is full (matching the
// Python original's OrderedDict.popitem()-based FIFO behavior rather
// than a true touch-on-hit LRU).
type Cache[T any] struct {
	base Indexable[T]
	size int

	order   *list.List               // front = oldest
	entries map[int]*list.Element    // index -> element in order
	values  map[int]T                // index -> cached value
}

// NewCache returns a view over arr that caches up to size recently read
// values. A size <= 0 disables caching (every Get reads through to arr).
func NewCache[T any](arr Indexable[T], size int) *Cache[T] {
	return &Cache[T]{
		base:    arr,
		size:    size,
		order:   list.New(),
		entries: make(map[int]*list.Element),
		values:  make(map[int]T),
	}
}

func (c *Cache[T]) Len() int { return c.base.Len() }

func (c *Cache[T]) Get(i int) (T, error) {
	if _, ok := c.entries[i]; ok {
		return c.values[i], nil
	}
	v, err := c.base.Get(i)
	if err != nil {
		var zero T
		return zero, err
	}
	if c.size > 0 {
		if c.order.Len() >= c.size {
			oldest := c.order.Front()
			c.order.Remove(oldest)
			idx := oldest.Value.(int)
			delete(c.entries, idx)
			delete(c.values, idx)
		}
		c.entries[i] = c.order.PushBack(i)
		c.values[i] = v
	}
	return v, nil
}
