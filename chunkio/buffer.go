package chunkio

import "reflect"

// Buffer is a caller-owned destination array that Load writes samples
// into. It is the spec's "Buffer" contract: positional assignment plus
// first-axis slicing and zero-fill. Because the K destination buffers
// passed to Load may each hold a different element type, Buffer is
// reflection-backed rather than generic, the same role frame.Frame plays
// in the teacher this package is adapted from (frame.go itself was not
// present in the retrieved reference pack, so this reconstructs the
// minimal contract visible from its call sites rather than copying it).
type Buffer interface {
	// Len returns the buffer's full first-axis length (before ring
	// truncation to a multiple of the chunk size).
	Len() int
	// Set assigns v to position i.
	Set(i int, v interface{})
	// Slice returns a view over the half-open range [lo, hi).
	Slice(lo, hi int) View
	// Zero overwrites the half-open range [lo, hi) with the zero value
	// of the buffer's element type.
	Zero(lo, hi int)
}

// View is a first-axis slice of a Buffer. Views alias the Buffer's
// backing storage and are only valid until the next call to
// (*Loader).Next on the Loader that produced them.
type View interface {
	Len() int
	// Interface returns the view's underlying slice, e.g. a []int, as
	// an interface{}; callers type-assert it to the concrete element
	// slice type.
	Interface() interface{}
}

type sliceBuffer struct {
	rv reflect.Value
}

// NewBuffer wraps a slice (any element type) as a Buffer. slice must be
// a slice value, e.g. []float32 or []string; passing anything else
// panics.
func NewBuffer(slice interface{}) Buffer {
	rv := reflect.ValueOf(slice)
	if rv.Kind() != reflect.Slice {
		panic("chunkio: NewBuffer requires a slice, got " + rv.Kind().String())
	}
	return &sliceBuffer{rv: rv}
}

func (b *sliceBuffer) Len() int { return b.rv.Len() }

func (b *sliceBuffer) Set(i int, v interface{}) {
	b.rv.Index(i).Set(reflect.ValueOf(v))
}

func (b *sliceBuffer) Slice(lo, hi int) View {
	return &sliceView{rv: b.rv.Slice(lo, hi)}
}

func (b *sliceBuffer) Zero(lo, hi int) {
	zero := reflect.Zero(b.rv.Type().Elem())
	for i := lo; i < hi; i++ {
		b.rv.Index(i).Set(zero)
	}
}

type sliceView struct{ rv reflect.Value }

func (v *sliceView) Len() int               { return v.rv.Len() }
func (v *sliceView) Interface() interface{} { return v.rv.Interface() }

// CopyOut copies v's contents into a freshly allocated slice of the same
// element type and length, for callers that need the data to outlive
// the Loader's next Next() call. dst must be a pointer to a slice of the
// matching element type, e.g. *[]float32.
func CopyOut(dst interface{}, v View) {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.Elem().Kind() != reflect.Slice {
		panic("chunkio: CopyOut requires a pointer to a slice")
	}
	src := reflect.ValueOf(v.Interface())
	out := reflect.MakeSlice(dv.Elem().Type(), src.Len(), src.Len())
	reflect.Copy(out, src)
	dv.Elem().Set(out)
}
