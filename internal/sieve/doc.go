// Package sieve connects the scanning, caching, and commit machinery to a
// presentation layer.
//
// The Synchronizer is the single background worker that serializes directory
// scans: each request loads the persisted project, reconciles the collection
// with the filesystem, regroups similar shots, and publishes a snapshot. The
// Session owns the interactive side: row building for the selected image and
// its similars, lookahead prefetching, status text, and commit runs. All
// worker-to-bridge traffic crosses through a Dispatcher so the bridge only
// ever runs on its own thread.
package sieve
