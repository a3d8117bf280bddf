package chunkio

import "github.com/grailbio/base/status"

// Option configures a Loader constructed by Load.
type Option func(*config)

type config struct {
	padLast bool
	status  *status.Group
}

// WithPadLast controls what happens when the number of samples produced
// by the sources is not a multiple of the chunk size. With padLast
// false (the default), a short final chunk is simply shorter than
// chunkSize. With padLast true, the final chunk is padded out to
// chunkSize with the destination buffers' zero value and its valid
// length is reported separately by (*Loader).Next's second return
// value.
func WithPadLast(pad bool) Option {
	return func(c *config) { c.padLast = pad }
}

// WithStatus attaches a status.Group the Loader reports the ring layout
// at start-up and its own close to. A nil group (the default)
// disables status reporting.
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
