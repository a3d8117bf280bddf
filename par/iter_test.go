package par

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pombredanne/seqtools"
)

// sliceSource is a test Indexable backed by a plain slice, optionally
// failing on one configured index.
type sliceSource struct {
	values  []int
	failAt  int // -1 disables failing
	failErr error
}

func (s *sliceSource) Len() int { return len(s.values) }

func (s *sliceSource) Get(i int) (int, error) {
	if i == s.failAt {
		return 0, s.failErr
	}
	return s.values[i], nil
}

func drain[T any](t *testing.T, it *Iterator[T]) ([]T, error) {
	t.Helper()
	ctx := context.Background()
	var out []T
	for {
		v, err := it.Next(ctx)
		if err == Done {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

func TestIterOrderPreservation(t *testing.T) {
	src := &sliceSource{values: []int{10, 20, 30, 40, 50}, failAt: -1}
	it := Iter[int](src, WithNProcs(2))
	got, err := drain(t, it)
	require.NoError(t, err)
	if diff := cmp.Diff([]int{10, 20, 30, 40, 50}, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestIterFuzzedOrderPreservation(t *testing.T) {
	fz := fuzz.NewWithSeed(1)
	const n = 200
	values := make([]int, n)
	for i := range values {
		fz.Fuzz(&values[i])
	}
	for _, nprocs := range []int{1, 2, 4, 8} {
		src := &sliceSource{values: values, failAt: -1}
		it := Iter[int](src, WithNProcs(nprocs))
		got, err := drain(t, it)
		require.NoErrorf(t, err, "nprocs=%d", nprocs)
		if diff := cmp.Diff(values, got); diff != "" {
			t.Errorf("nprocs=%d: unexpected order (-want +got):\n%s", nprocs, diff)
		}
	}
}

func TestIterFailureIsolation(t *testing.T) {
	before := runtime.NumGoroutine()
	failure := fmt.Errorf("bad")
	src := &sliceSource{values: []int{10, 20, 30, 40, 50}, failAt: 2, failErr: failure}
	it := Iter[int](src, WithNProcs(3))
	_, err := drain(t, it)
	require.Error(t, err)
	ae, ok := err.(*seqtools.AccessError)
	require.True(t, ok, "expected *seqtools.AccessError, got %T", err)
	require.Equal(t, 2, ae.Index)
	require.ErrorIs(t, ae, failure)

	_, err = it.Next(context.Background())
	require.ErrorIs(t, err, Done)

	waitGoroutineCount(t, before)
}

func TestIterEmptySource(t *testing.T) {
	before := runtime.NumGoroutine()
	src := &sliceSource{values: nil, failAt: -1}
	it := Iter[int](src, WithNProcs(4))
	got, err := drain(t, it)
	require.NoError(t, err)
	require.Empty(t, got)
	waitGoroutineCount(t, before)
}

func TestIterEarlyStopCleanup(t *testing.T) {
	before := runtime.NumGoroutine()
	values := make([]int, 1000)
	for i := range values {
		values[i] = i
	}
	src := &sliceSource{values: values, failAt: -1}
	it := Iter[int](src, WithNProcs(4))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := it.Next(ctx)
		require.NoError(t, err)
	}
	it.Close()
	waitGoroutineCount(t, before)
}

func TestIterLengthPreservation(t *testing.T) {
	src := &sliceSource{values: make([]int, 137), failAt: -1}
	it := Iter[int](src, WithNProcs(3))
	got, err := drain(t, it)
	require.NoError(t, err)
	require.Len(t, got, src.Len())
}

// waitGoroutineCount polls runtime.NumGoroutine() until it settles back
// to at most the given baseline, a bound on the "cleanup on early stop
// leaves no live worker" property. No goroutine-leak-detector dependency
// appears anywhere in the retrieved example pack, so this settling-poll
// is the fallback (see DESIGN.md).
func waitGoroutineCount(t *testing.T, baseline int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= baseline {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Errorf("goroutine count did not settle: now %d, baseline %d", runtime.NumGoroutine(), baseline)
}
