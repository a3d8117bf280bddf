package par

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	grerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"

	"github.com/pombredanne/seqtools"
	"github.com/pombredanne/seqtools/internal/wire"
)

// Done is returned by Iterator.Next once the source has been fully
// consumed (or the Iterator closed); analogous to io.EOF.
var Done = stderrors.New("par: iterator exhausted")

// sentinel is the out-of-band index value a worker interprets as "stop".
// Real indices are always >= 0, so -1 is never ambiguous.
const sentinel = -1

type result[T any] struct {
	index int
	value T
	err   error
}

// Iterator yields the elements of an Indexable source in order, computed
// ahead of time across a pool of worker goroutines. It is not safe for
// concurrent use by multiple goroutines: like the Python generator it is
// adapted from, it has exactly one consumer.
type Iterator[T any] struct {
	src    seqtools.Indexable[T]
	n      int
	nprocs int
	status *status.Group

	qIn  chan int
	qOut chan result[T]
	wg   sync.WaitGroup

	started bool
	pending map[int]T
	nInject int
	nDone   int
	err     error
	done    bool

	closeOnce sync.Once
}

// Iter returns an Iterator producing src.Get(0), src.Get(1), ...,
// src.Get(src.Len()-1) in order, computed in parallel across nprocs
// worker goroutines (see WithNProcs).
func Iter[T any](src seqtools.Indexable[T], opts ...Option) *Iterator[T] {
	cfg := newConfig(opts)
	return &Iterator[T]{
		src:     src,
		n:       src.Len(),
		nprocs:  resolveNProcs(cfg.nprocs),
		status:  cfg.status,
		pending: make(map[int]T),
	}
}

func (it *Iterator[T]) start() {
	if it.started {
		return
	}
	it.started = true
	it.qIn = make(chan int, 2*it.nprocs)
	it.qOut = make(chan result[T], 2*it.nprocs)
	it.wg.Add(it.nprocs)
	for w := 0; w < it.nprocs; w++ {
		go it.work(w)
	}
	if it.status != nil {
		it.status.Printf("par: started %d workers for %d items", it.nprocs, it.n)
	}
}

func (it *Iterator[T]) work(id int) {
	defer it.wg.Done()
	for i := range it.qIn {
		if i == sentinel {
			return
		}
		v, err := it.src.Get(i)
		if err != nil {
			log.Error.Printf("par: worker %d: index %d failed: %v", id, i, err)
			it.qOut <- result[T]{index: i, err: err}
			continue
		}
		it.qOut <- result[T]{index: i, value: v}
	}
}

// Next returns the next element in order, blocking until it is
// available. It returns Done once the sequence is exhausted, or an
// *seqtools.AccessError if a worker failed to compute some index; after
// either, the Iterator is closed and further calls to Next return Done.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if it.done {
		return zero, Done
	}
	it.start()

	if it.n == 0 {
		it.closeInternal()
		it.done = true
		return zero, Done
	}

	for {
		if v, ok := it.pending[it.nDone]; ok {
			delete(it.pending, it.nDone)
			it.nDone++
			if it.nDone == it.n {
				it.closeInternal()
				it.done = true
			}
			return v, nil
		}

		for it.nInject < it.n && len(it.qIn) < it.nprocs {
			select {
			case it.qIn <- it.nInject:
				it.nInject++
			case <-ctx.Done():
				it.fail(ctx.Err())
				return zero, ctx.Err()
			}
		}

		select {
		case res := <-it.qOut:
			if res.err != nil {
				// res.err is wrapped twice: wire.NewRecord builds the
				// structured {kind, message, where} failure record the spec
				// calls for (see internal/wire's doc comment), then
				// grailbio/base/errors tags it with Kind Other, the teacher's
				// own chaining idiom. AccessError.Unwrap -> the grerrors.Error
				// -> the wire.Record -> the original res.err, so
				// errors.Is/errors.As still reach it.
				rec := wire.NewRecord(res.err, fmt.Sprintf("index %d", res.index))
				ae := &seqtools.AccessError{Index: res.index, Cause: grerrors.E(grerrors.Other, rec)}
				it.fail(ae)
				return zero, ae
			}
			it.pending[res.index] = res.value
		case <-ctx.Done():
			it.fail(ctx.Err())
			return zero, ctx.Err()
		}
	}
}

func (it *Iterator[T]) fail(err error) {
	it.err = err
	it.done = true
	it.closeInternal()
}

// Close runs the mandatory shutdown procedure: drain any results still
// in flight (so workers blocked trying to post aren't stuck), send a
// sentinel to each worker, then join them. It is idempotent and safe to
// call after Next has already returned Done or an error; callers that
// stop consuming before the Iterator is exhausted must call Close to
// avoid leaking worker goroutines.
func (it *Iterator[T]) Close() {
	it.closeInternal()
}

func (it *Iterator[T]) closeInternal() {
	if !it.started {
		return
	}
	it.closeOnce.Do(func() {
		// 1. Drain q_out so workers blocked trying to post are
		// unblocked; this must happen before sentinels are sent, or a
		// worker could deadlock posting into a full channel no one is
		// reading anymore.
	drain:
		for {
			select {
			case <-it.qOut:
			default:
				break drain
			}
		}
		// 2. Send nprocs sentinels.
		for i := 0; i < it.nprocs; i++ {
			it.qIn <- sentinel
		}
		close(it.qIn)
		// 3. Join every worker.
		it.wg.Wait()
		if it.status != nil {
			it.status.Printf("par: all workers joined")
		}
	})
}
