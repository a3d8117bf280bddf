// Package par provides a parallel, order-preserving iterator over an
// Indexable source: Iter spawns a pool of worker goroutines that compute
// source elements concurrently, and reassembles their results in strict
// index order for the consumer, the way a multiprocessing worker pool
// would but without needing to cross a process boundary to do so.
//
// The dispatch loop (inject work while the input queue has spare
// capacity, then wait for one result, then drain any results that are
// now contiguous with the last yielded index) lives on the call to
// Next, mirroring exec.Eval's donec/errc polling loop in the teacher
// this package was adapted from, cut down to a flat index range instead
// of a dependency graph.
package par
