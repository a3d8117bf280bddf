package chunkio

import (
	"context"
	"fmt"
	stderrors "errors"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/status"
	"golang.org/x/sync/semaphore"

	"github.com/pombredanne/seqtools/internal/wire"
)

// Done is returned by (*Loader).Next once every source has been
// exhausted and all buffered chunks have been delivered.
var Done = stderrors.New("chunkio: loader exhausted")

// LoadError wraps a non-EOF error returned by a Source while the
// producer was filling a chunk.
type LoadError struct{ Err error }

func (e *LoadError) Error() string { return fmt.Sprintf("chunkio: loading chunk failed: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

type tKind int

const (
	tDone tKind = iota
	tFail
)

type terminator struct {
	kind   tKind
	filled int
	err    error
}

type chunkMsg struct {
	slot   int
	width  int // how many ring positions to expose in the yielded view
	length int // how many of those positions hold real samples
	term   *terminator
}

// Loader fills a fixed set of destination Buffers from a matching set
// of Sources, one chunk at a time, under bounded producer/consumer
// backpressure: a single producer goroutine runs ahead of the caller by
// at most the ring's capacity in chunks. It is adapted from the
// buffer_loader_worker / chunk_load pair this package's doc comment
// describes; see DESIGN.md for how its two-semaphore handshake maps
// onto golang.org/x/sync/semaphore.
type Loader struct {
	sources   []Source
	buffers   []Buffer
	chunkSize int
	nChunks   int
	padLast   bool
	status    *status.Group

	rsem *semaphore.Weighted // counts chunks ready to read
	wsem *semaphore.Weighted // counts ring slots free to write

	readyCh chan chunkMsg

	pctx    context.Context
	pcancel context.CancelFunc
	wg      sync.WaitGroup

	done      bool
	closeOnce sync.Once

	// pendingRelease is set once Next hands back a view and cleared at
	// the top of the following Next call, releasing that
	// slot's wsem unit only once the caller is done looking at the view
	// it aliases. This mirrors the Python original's chunk_load, where
	// "offset = ...; wsem.release()" sit after the generator's yield and
	// so only run once the caller resumes by calling next() again.
	pendingRelease bool
}

// Load starts filling buffers from sources, chunkSize samples at a
// time, and returns a Loader the caller pulls completed chunks from via
// Next. len(sources) must equal len(buffers); the ring Load cycles
// through is the largest multiple of chunkSize that fits within the
// shortest buffer, and positions past it in every buffer are unused.
// Load panics if chunkSize is not positive, if sources and buffers have
// different lengths, or if the shortest buffer cannot hold even one
// chunk.
func Load(ctx context.Context, sources []Source, buffers []Buffer, chunkSize int, opts ...Option) *Loader {
	if chunkSize <= 0 {
		panic(errors.E(errors.Invalid, fmt.Sprintf("chunkio: chunkSize must be positive, got %d", chunkSize)))
	}
	if len(sources) != len(buffers) {
		panic(errors.E(errors.Invalid, fmt.Sprintf("chunkio: got %d sources but %d buffers", len(sources), len(buffers))))
	}
	minLen := -1
	for _, b := range buffers {
		if minLen < 0 || b.Len() < minLen {
			minLen = b.Len()
		}
	}
	nChunks := 0
	if minLen > 0 {
		nChunks = minLen / chunkSize
	}
	if nChunks == 0 {
		panic(errors.E(errors.Invalid, fmt.Sprintf("chunkio: shortest buffer cannot hold a full chunk of size %d", chunkSize)))
	}

	cfg := newConfig(opts)
	pctx, cancel := context.WithCancel(ctx)
	l := &Loader{
		sources:   sources,
		buffers:   buffers,
		chunkSize: chunkSize,
		nChunks:   nChunks,
		padLast:   cfg.padLast,
		status:    cfg.status,
		rsem:      semaphore.NewWeighted(int64(nChunks + 1)),
		wsem:      semaphore.NewWeighted(int64(nChunks)),
		readyCh:   make(chan chunkMsg, nChunks+1),
		pctx:      pctx,
		pcancel:   cancel,
	}
	// rsem starts empty (no chunks ready yet); wsem starts full (every
	// ring slot is free). acquiring the whole of rsem's capacity up
	// front is how a Weighted semaphore, which always starts at full
	// capacity, is made to start at zero instead. rsem has one unit more
	// than the ring has slots because a short final chunk and the
	// terminator after it are two releases for a single wsem unit.
	if !l.rsem.TryAcquire(int64(nChunks + 1)) {
		panic(errors.E(errors.Fatal, "chunkio: invariant violated initializing read semaphore"))
	}
	log.Debug.Printf("chunkio: ring holds %d chunks of %d samples (%s per column)",
		nChunks, chunkSize, humanize.Comma(int64(nChunks*chunkSize)))
	if l.status != nil {
		l.status.Printf("chunkio: loading into ring of %d chunks x %d", nChunks, chunkSize)
	}
	l.wg.Add(1)
	go l.produce()
	return l
}

// Next blocks until a chunk is ready and returns one View per buffer,
// aliasing that buffer's ring storage for the chunk's positions. The
// second return value is the number of positions in the views that hold
// real samples; it is always chunkSize except possibly on the final
// chunk, which is shorter than chunkSize unless WithPadLast(true) was
// given, in which case the views are full width but only the first n
// positions are real samples. Next returns Done once every chunk has
// been delivered, or a *LoadError if a Source failed.
//
// The returned views are only valid until the next call to Next.
func (l *Loader) Next(ctx context.Context) ([]View, int, error) {
	if l.pendingRelease {
		l.wsem.Release(1)
		l.pendingRelease = false
	}
	if l.done {
		return nil, 0, Done
	}
	if err := l.rsem.Acquire(ctx, 1); err != nil {
		l.done = true
		l.closeInternal()
		return nil, 0, err
	}
	msg := <-l.readyCh
	if msg.term != nil {
		return l.finish(*msg.term)
	}
	views := make([]View, len(l.buffers))
	base := msg.slot * l.chunkSize
	for k, buf := range l.buffers {
		views[k] = buf.Slice(base, base+msg.width)
	}
	// Deferred to the top of the next Next call: releasing here, in the
	// same call that hands views back, would let the producer (already
	// parked in wsem.Acquire) start overwriting this exact slot while the
	// caller is still looking at the view.
	l.pendingRelease = true
	return views, msg.length, nil
}

func (l *Loader) finish(t terminator) ([]View, int, error) {
	l.done = true
	l.closeInternal()
	if t.kind == tFail {
		return nil, 0, &LoadError{Err: t.err}
	}
	return nil, 0, Done
}

// Close stops the producer and releases its goroutine. It is idempotent
// and safe to call after Next has already returned Done or an error;
// callers that stop consuming before the Loader is exhausted must call
// Close to avoid leaking the producer goroutine.
func (l *Loader) Close() { l.closeInternal() }

func (l *Loader) closeInternal() {
	l.closeOnce.Do(func() {
		l.pcancel()
		// The producer may be blocked trying to send a chunk or
		// terminator into readyCh if the caller stopped consuming
		// early; drain it so the send unblocks and produce can observe
		// pctx is canceled.
	drain:
		for {
			select {
			case <-l.readyCh:
			default:
				break drain
			}
		}
		l.wg.Wait()
		if l.status != nil {
			l.status.Printf("chunkio: loader closed")
		}
	})
}

func (l *Loader) produce() {
	defer l.wg.Done()
	chunkIdx := 0
	for {
		if err := l.wsem.Acquire(l.pctx, 1); err != nil {
			return
		}
		slot := chunkIdx % l.nChunks
		base := slot * l.chunkSize
		filled, ferr := l.fillChunk(l.pctx, base)
		switch {
		case ferr == nil:
			l.readyCh <- chunkMsg{slot: slot, width: l.chunkSize, length: l.chunkSize}
			l.rsem.Release(1)
			chunkIdx++
		case stderrors.Is(ferr, EOF):
			if filled > 0 {
				width := filled
				if l.padLast {
					l.zeroPad(base, filled)
					width = l.chunkSize
				}
				l.readyCh <- chunkMsg{slot: slot, width: width, length: filled}
				l.rsem.Release(1)
			}
			l.readyCh <- chunkMsg{term: &terminator{kind: tDone, filled: filled}}
			l.rsem.Release(1)
			return
		default:
			log.Error.Printf("chunkio: producer failed filling chunk %d: %v", chunkIdx, ferr)
			// Wrapped in the structured {kind, message, where} failure
			// record (see internal/wire's doc comment); LoadError.Unwrap
			// reaches the Record, whose own Unwrap reaches ferr, so
			// errors.Is/errors.As still work against the original cause.
			rec := wire.NewRecord(ferr, fmt.Sprintf("chunk %d", chunkIdx))
			l.readyCh <- chunkMsg{term: &terminator{kind: tFail, err: rec}}
			l.rsem.Release(1)
			return
		}
	}
}

// fillChunk reads chunkSize tuples from sources into buffers starting
// at ring position base, stopping at the first source that returns an
// error (EOF or otherwise), without calling the remaining sources for
// that tuple. It returns how many complete tuples it filled.
func (l *Loader) fillChunk(ctx context.Context, base int) (int, error) {
	for p := 0; p < l.chunkSize; p++ {
		for k, src := range l.sources {
			v, err := src.Next(ctx)
			if err != nil {
				return p, err
			}
			l.buffers[k].Set(base+p, v)
		}
	}
	return l.chunkSize, nil
}

func (l *Loader) zeroPad(base, filled int) {
	for _, buf := range l.buffers {
		buf.Zero(base+filled, base+l.chunkSize)
	}
}
