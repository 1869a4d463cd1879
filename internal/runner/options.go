package runner

import "runtime"

const (
	// DefaultIterations is the per-worker workload when none is configured.
	DefaultIterations = 5_000_000
	// FallbackThreads is used when hardware concurrency cannot be detected.
	FallbackThreads = 8
)

// hardwareConcurrency is swapped in tests.
var hardwareConcurrency = runtime.NumCPU

// Options configure the Runner.
type Options struct {
	Threads    int      // workers per trial (0 means hardware concurrency)
	Iterations int      // increments per worker (0 means DefaultIterations)
	Observer   Observer // optional trial lifecycle callbacks
}

// DefaultThreads returns the detected hardware concurrency, or
// FallbackThreads when detection reports zero.
func DefaultThreads() int {
	if n := hardwareConcurrency(); n > 0 {
		return n
	}
	return FallbackThreads
}

func (o *Options) normalize() {
	if o.Threads <= 0 {
		o.Threads = DefaultThreads()
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
}
