// Package seqtools composes lazy, indexable sequences for dataset
// pipelines: element-wise transforms, reindexing views, a small recency
// cache, and (in the par and chunkio subpackages) parallel prefetching
// and chunked buffer loading for feeding the result to a consumer at
// high throughput.
//
// The collaborator types in this package (Subset, Cache, Map) are thin
// views over an Indexable base; the concurrency engine that consumes
// them lives in par and chunkio.
package seqtools
