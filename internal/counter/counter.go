// Package counter holds the integer every benchmark trial increments.
package counter

import (
	"sync"
	"sync/atomic"
)

// Shared is a single counter whose access discipline is chosen by the caller.
// One Shared belongs to exactly one trial; the workers of that trial receive
// the same pointer.
type Shared struct {
	value int64
	mu    sync.Mutex
}

// New returns a counter reading 0.
func New() *Shared {
	return &Shared{}
}

// Reset sets the counter back to 0.
func (c *Shared) Reset() {
	atomic.StoreInt64(&c.value, 0)
}

// Load returns the current value. Callers must have joined every worker
// before reading the result of an unsynchronized trial.
func (c *Shared) Load() int64 {
	return atomic.LoadInt64(&c.value)
}

// Store overwrites the current value.
func (c *Shared) Store(v int64) {
	atomic.StoreInt64(&c.value, v)
}

// IncrementUnsynchronized performs a plain read, add and write-back.
// Concurrent callers lose updates; that is the behaviour being measured.
//
//go:norace
//go:noinline
func (c *Shared) IncrementUnsynchronized() {
	c.value++
}

// IncrementAtomic performs an atomic fetch-and-add.
func (c *Shared) IncrementAtomic() {
	atomic.AddInt64(&c.value, 1)
}

// IncrementLocked performs the read-modify-write inside the counter's mutex.
func (c *Shared) IncrementLocked() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}
