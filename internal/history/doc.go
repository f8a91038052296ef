// Package history records completed commit runs in a SQLite database so
// past sieve sessions stay auditable: which directory, which destination,
// which method, and how many files moved, copied, or failed.
package history
