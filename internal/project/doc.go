// Package project persists per-directory sieve state between sessions.
//
// Each scanned directory maps to one JSON snapshot under the configured
// projects directory. The snapshot filename is derived from the directory
// path, so reopening the same directory resumes its keep and discard
// decisions and its event list. Writes are atomic; a snapshot that cannot
// be parsed is treated as absent rather than aborting the session.
package project
