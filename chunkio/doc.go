// Package chunkio fills caller-provided destination buffers from a set
// of source iterables under a bounded ring-buffer protocol, yielding
// views over completed chunks. A single producer goroutine streams
// samples into a ring formed by truncating each destination buffer to a
// multiple of the chunk size; the caller's goroutine consumes
// chunk-sized views under a two-semaphore flow-control handshake, the
// same rsem/wsem split the Python buffer_loader_worker this package is
// adapted from uses, realized here with golang.org/x/sync/semaphore.
//
// Yielded views alias the underlying ring storage and are only valid
// until the next call to (*Loader).Next; copy their contents out with
// CopyOut if they need to outlive that call.
package chunkio
