package chunkio

import (
	"context"
	"errors"
)

// EOF is returned by Source.Next once a source is exhausted. Load treats
// the first EOF seen across its sources as the end of the stream, the
// same zip()-style "stop at the first exhausted source" behavior the
// loader this package is adapted from implements.
var EOF = errors.New("chunkio: source exhausted")

// Source produces one sample at a time. Next must be safe to call
// repeatedly after returning EOF (it should keep returning EOF).
type Source interface {
	Next(ctx context.Context) (interface{}, error)
}

// Slice adapts a fixed slice of typed samples into a Source.
type Slice[T any] struct {
	values []T
	pos    int
}

// NewSlice returns a Source that yields values in order, then EOF.
func NewSlice[T any](values []T) *Slice[T] {
	return &Slice[T]{values: values}
}

func (s *Slice[T]) Next(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.values) {
		return nil, EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

// Func adapts a generator function into a Source. fn must return EOF
// once it has no more values to produce.
type Func[T any] struct {
	fn func(ctx context.Context) (T, error)
}

// NewFunc returns a Source backed by fn.
func NewFunc[T any](fn func(ctx context.Context) (T, error)) *Func[T] {
	return &Func[T]{fn: fn}
}

func (f *Func[T]) Next(ctx context.Context) (interface{}, error) {
	v, err := f.fn(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}
