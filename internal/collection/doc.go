// Package collection holds the photo collection that imagesieve triages: the
// ordered items found under a scanned root, the named events annotating them,
// and the operations that mutate the collection in place (filesystem
// synchronization, similarity grouping, commit).
//
// A Collection value is not safe for concurrent use; the Shared wrapper is
// the mutual-exclusion boundary between the synchronizer worker and the
// interactive thread. Reads that cross a thread boundary take a Snapshot
// instead of holding the lock.
//
// Item order is stable between scans: Synchronize sorts by timestamp (then
// path) once and later operations never reorder. Similarity indices are kept
// symmetric and an item never lists itself.
package collection
