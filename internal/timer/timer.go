// Package timer provides a reusable monotonic stopwatch.
package timer

import "time"

// Timer measures the wall time between Start and Stop. The same Timer can be
// restarted any number of times; every cycle overwrites the previous one.
type Timer struct {
	start time.Time
	end   time.Time
}

// New returns a Timer that reports zero until the first Start/Stop cycle.
func New() *Timer {
	return &Timer{}
}

// Start captures the beginning of a measurement.
func (t *Timer) Start() {
	t.start = time.Now()
	t.end = t.start
}

// Stop captures the end of a measurement.
func (t *Timer) Stop() {
	t.end = time.Now()
}

// Duration returns the last measured interval.
func (t *Timer) Duration() time.Duration {
	// time.Time carries a monotonic reading, so Sub is immune to wall clock jumps.
	d := t.end.Sub(t.start)
	if d < 0 {
		return 0
	}
	return d
}

// Elapsed returns the last measured interval in fractional milliseconds.
func (t *Timer) Elapsed() float64 {
	return float64(t.Duration()) / float64(time.Millisecond)
}
