package seqtools

import "fmt"

// Indexable is a finite, random-access, read-only sequence of T. Len is
// fixed for the lifetime of any iteration over the Indexable; Get(i) must
// be defined for every 0 <= i < Len(). Repeated calls to Get(i) may
// return different values (the engine in par and chunkio tolerates this)
// but must not have cross-call side effects that break concurrent access
// to distinct indices: par.Iter calls Get concurrently across worker
// goroutines, each on a different index.
type Indexable[T any] interface {
	Len() int
	Get(i int) (T, error)
}

// AccessError is the error par.Iterator.Next returns when an Indexable's
// Get fails. chunkio does not use it: a failing chunkio.Source is
// reported as a *chunkio.LoadError instead. AccessError chains to the
// underlying cause when one was available to the caller; Opaque is
// set when the failure crossed a boundary that could not preserve the
// cause (mirroring the Python original's fallback when the exception
// could not be pickled).
type AccessError struct {
	// Index is the position that failed to resolve, or -1 when the
	// failure is not tied to a single index.
	Index int
	// Cause is the underlying error, when available.
	Cause error
	// Opaque is set when Cause is nil because the failure could not be
	// transported with its original error value intact.
	Opaque bool
}

func (e *AccessError) Error() string {
	switch {
	case e.Index >= 0 && e.Cause != nil:
		return fmt.Sprintf("accessing index %d failed: %v", e.Index, e.Cause)
	case e.Index >= 0:
		return fmt.Sprintf("accessing index %d failed", e.Index)
	case e.Cause != nil:
		return fmt.Sprintf("exception raised while reading sources: %v", e.Cause)
	default:
		return "exception raised while reading sources"
	}
}

func (e *AccessError) Unwrap() error { return e.Cause }
