// Package imagecache makes image display latency independent of decode cost.
//
// Load is the synchronous read-through path for the item being viewed;
// Prefetch warms the cache from a bounded worker pool for items the user is
// about to see. A singleflight group guarantees at-most-one-decode-per-key
// even when Load and Prefetch race on the same image, and the map lock is
// never held across a decode, so unrelated lookups do not queue behind a
// slow file.
//
// The cache is a bounded LRU. Entries inserted by a prefetch are protected
// from eviction until first consumption so speculative work is not thrown
// away before the user arrives at it.
package imagecache
