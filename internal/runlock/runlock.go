// Package runlock serializes benchmark runs on one host through an advisory
// file lock.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("run lock held by another process")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. The parent directory is
// created when missing.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		return nil, fmt.Errorf("run lock: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("run lock: %w", err)
		}
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("run lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}

// Release drops the lock. It is safe to call on a nil Lock and more than once.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("run lock %s: %w", l.fl.Path(), err)
	}
	return nil
}
