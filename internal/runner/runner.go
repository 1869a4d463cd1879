package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/syncbench/internal/counter"
	"github.com/torosent/syncbench/internal/metrics"
	"github.com/torosent/syncbench/internal/strategy"
	"github.com/torosent/syncbench/internal/timer"
)

// Result captures the outcome of one trial. It is never modified after Run
// returns it.
type Result struct {
	Label      string              `json:"label" yaml:"label"`
	Strategy   strategy.Strategy   `json:"strategy" yaml:"strategy"`
	Baseline   bool                `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Threads    int                 `json:"threads" yaml:"threads"`
	Iterations int                 `json:"iterations" yaml:"iterations"`
	Elapsed    time.Duration       `json:"-" yaml:"-"`
	ElapsedMs  float64             `json:"elapsed_ms" yaml:"elapsed_ms"`
	FinalValue int64               `json:"final_value" yaml:"final_value"`
	Expected   int64               `json:"expected" yaml:"expected"`
	Lost       int64               `json:"lost_updates" yaml:"lost_updates"`
	Workers    metrics.WorkerStats `json:"workers" yaml:"workers"`
}

// Correct reports whether the final value satisfies the strategy's contract:
// exactly threads*iterations, or at most that for NonAtomic.
func (r Result) Correct() bool {
	if r.Strategy.Exact() || r.Baseline {
		return r.FinalValue == r.Expected
	}
	return r.FinalValue <= r.Expected
}

// Runner executes benchmark trials one at a time.
type Runner struct {
	opt       Options
	timer     *timer.Timer
	collector *metrics.Collector
	spawned   atomic.Int64
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:       opt,
		timer:     timer.New(),
		collector: metrics.NewCollector(),
	}
}

// Threads returns the normalized worker count.
func (r *Runner) Threads() int { return r.opt.Threads }

// Iterations returns the normalized per-worker workload.
func (r *Runner) Iterations() int { return r.opt.Iterations }

// Spawned returns the number of worker goroutines started over the runner's
// lifetime.
func (r *Runner) Spawned() int64 { return r.spawned.Load() }

// Run executes one trial of s and blocks until every worker has finished.
func (r *Runner) Run(s strategy.Strategy) Result {
	shared := counter.New()
	r.collector.Reset()
	r.opt.Observer.TrialStarted(r.trial(s, false, shared))

	var offsets []time.Duration
	r.timer.Start()
	if s.Concurrent() {
		offsets = r.runWorkers(shared, s.Incrementer())
	} else {
		runSequential(shared, r.total())
	}
	r.timer.Stop()

	for _, offset := range offsets {
		r.collector.RecordWorker(offset)
	}
	res := r.result(s, false, shared.Load())
	r.opt.Observer.TrialFinished(res)
	return res
}

// RunInline executes the strategy's own increment operation threads*iterations
// times on the calling goroutine. It is the baseline of a comparison.
func (r *Runner) RunInline(s strategy.Strategy) Result {
	shared := counter.New()
	r.collector.Reset()
	r.opt.Observer.TrialStarted(r.trial(s, true, shared))

	total := r.total()
	r.timer.Start()
	if s.Concurrent() {
		inc := s.Incrementer()
		for i := int64(0); i < total; i++ {
			inc(shared)
		}
	} else {
		runSequential(shared, total)
	}
	r.timer.Stop()

	res := r.result(s, true, shared.Load())
	r.opt.Observer.TrialFinished(res)
	return res
}

func (r *Runner) runWorkers(shared *counter.Shared, inc func(*counter.Shared)) []time.Duration {
	offsets := make([]time.Duration, r.opt.Threads)
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(r.opt.Threads)
	r.spawned.Add(int64(r.opt.Threads))
	for i := 0; i < r.opt.Threads; i++ {
		go func(slot int) {
			defer wg.Done()
			for j := 0; j < r.opt.Iterations; j++ {
				inc(shared)
			}
			offsets[slot] = time.Since(start)
		}(i)
	}
	wg.Wait()

	return offsets
}

// runSequential increments a local integer only; no goroutine is started.
func runSequential(shared *counter.Shared, total int64) {
	var local int64
	for i := int64(0); i < total; i++ {
		local++
	}
	shared.Store(local)
}

func (r *Runner) total() int64 {
	return int64(r.opt.Threads) * int64(r.opt.Iterations)
}

func (r *Runner) trial(s strategy.Strategy, baseline bool, shared *counter.Shared) Trial {
	return Trial{
		Strategy:     s,
		Threads:      r.opt.Threads,
		Iterations:   r.opt.Iterations,
		Baseline:     baseline,
		InitialValue: shared.Load(),
	}
}

func (r *Runner) result(s strategy.Strategy, baseline bool, final int64) Result {
	expected := r.total()
	lost := expected - final
	if lost < 0 {
		lost = 0
	}
	return Result{
		Label:      s.String(),
		Strategy:   s,
		Baseline:   baseline,
		Threads:    r.opt.Threads,
		Iterations: r.opt.Iterations,
		Elapsed:    r.timer.Duration(),
		ElapsedMs:  r.timer.Elapsed(),
		FinalValue: final,
		Expected:   expected,
		Lost:       lost,
		Workers:    r.collector.Stats(),
	}
}
