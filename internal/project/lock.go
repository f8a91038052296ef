package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the project.
var ErrLocked = errors.New("project is open in another process")

// Lock holds exclusive access to one project across processes, so two
// sessions cannot sieve the same directory and race each other's snapshot
// writes.
type Lock struct {
	lock *flock.Flock
}

// Acquire takes the lock for root, failing fast when another process holds
// it. The lock file lives beside the snapshot in the projects directory.
func (s *Store) Acquire(root string) (*Lock, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create projects directory: %w", err)
	}
	path := s.PathFor(root) + ".lock"
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{lock: fl}, nil
}

// Release gives up the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
