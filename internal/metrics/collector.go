package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestTrackable  = 1             // 1µs
	highestTrackable = 3_600_000_000 // 1h in µs
	significantFigs  = 3
)

// Collector records worker completion offsets in a thread-safe manner.
type Collector struct {
	mu      sync.Mutex
	hist    *hdrhistogram.Histogram
	workers int64
	min     time.Duration
	max     time.Duration
	sum     time.Duration
}

// WorkerStats summarises when the workers of one trial finished.
type WorkerStats struct {
	Workers  int64   `json:"workers" yaml:"workers"`
	MinMs    float64 `json:"min_ms" yaml:"min_ms"`
	MeanMs   float64 `json:"mean_ms" yaml:"mean_ms"`
	P50Ms    float64 `json:"p50_ms" yaml:"p50_ms"`
	P90Ms    float64 `json:"p90_ms" yaml:"p90_ms"`
	P99Ms    float64 `json:"p99_ms" yaml:"p99_ms"`
	MaxMs    float64 `json:"max_ms" yaml:"max_ms"`
	SpreadMs float64 `json:"spread_ms" yaml:"spread_ms"`
}

func NewCollector() *Collector {
	return &Collector{
		hist: hdrhistogram.New(lowestTrackable, highestTrackable, significantFigs),
	}
}

// RecordWorker records the time a worker needed from trial start to finish.
func (c *Collector) RecordWorker(offset time.Duration) {
	if offset < 0 {
		offset = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	us := offset.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)

	if c.workers == 0 || offset < c.min {
		c.min = offset
	}
	if offset > c.max {
		c.max = offset
	}
	c.sum += offset
	c.workers++
}

// Stats computes the aggregated worker statistics.
func (c *Collector) Stats() WorkerStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := WorkerStats{Workers: c.workers}
	if c.workers == 0 {
		return stats
	}

	stats.MinMs = toMillis(c.min)
	stats.MaxMs = toMillis(c.max)
	stats.MeanMs = toMillis(time.Duration(int64(c.sum) / c.workers))
	stats.SpreadMs = toMillis(c.max - c.min)
	stats.P50Ms = toMillis(time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond)
	stats.P90Ms = toMillis(time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond)
	stats.P99Ms = toMillis(time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond)
	return stats
}

// Reset clears every recorded value so the collector can serve another trial.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hist.Reset()
	c.workers = 0
	c.min = 0
	c.max = 0
	c.sum = 0
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
