package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/torosent/syncbench/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "syncbench.lock")

	first, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if first.Path() != path {
		t.Errorf("Path() = %q, want %q", first.Path(), path)
	}

	if _, err := runlock.Acquire(path); !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	if err := again.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if err := again.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestAcquireRejectsEmptyPath(t *testing.T) {
	if _, err := runlock.Acquire(""); err == nil {
		t.Fatal("Acquire(\"\") expected error")
	}
}

func TestReleaseNilLock(t *testing.T) {
	var l *runlock.Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}
