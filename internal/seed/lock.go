package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock is a cross-process lock preventing two seeding runs against the
// same files directory from racing each other's checkpoint writes.
// Adapted from the embedding service's model-download lock: same
// gofrs/flock-backed shape, a different lock file and domain.
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewRunLock builds a lock file at <dir>/.seeding.lock.
func NewRunLock(dir string) *RunLock {
	path := filepath.Join(dir, ".seeding.lock")
	return &RunLock{path: path, flock: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking, returning false
// if another seeding run already holds it.
func (l *RunLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("seed: create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("seed: acquire run lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Safe to call when not locked.
func (l *RunLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("seed: release run lock: %w", err)
	}
	l.locked = false
	return nil
}
