package par

import (
	"runtime"

	"github.com/grailbio/base/status"
)

// Option configures an Iterator constructed by Iter.
type Option func(*config)

type config struct {
	nprocs int
	status *status.Group
}

// WithNProcs sets the number of worker goroutines. n <= 0 means "number
// of available CPUs minus |n|", clamped at >= 1; this matches the
// nprocs parameter semantics of the original par_iter. The default (no
// WithNProcs option) is 0, i.e. one worker per CPU.
func WithNProcs(n int) Option {
	return func(c *config) { c.nprocs = n }
}

// WithStatus attaches a status.Group that Iter reports worker start-up
// and shutdown to, the same role *status.Group plays in
// exec.Eval in the teacher this package is adapted from. A nil group (the
// default) disables status reporting.
func WithStatus(g *status.Group) Option {
	return func(c *config) { c.status = g }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveNProcs implements the spec's clamping rule for nprocs <= 0:
// add the number of available CPUs, then floor at 1 so that a very
// negative nprocs (more negative than -runtime.NumCPU()) still yields a
// usable worker pool instead of zero or negative workers.
func resolveNProcs(n int) int {
	if n <= 0 {
		n += runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}
