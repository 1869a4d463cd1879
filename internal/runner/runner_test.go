package runner_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/strategy"
)

// recordingObserver keeps every callback for later inspection.
type recordingObserver struct {
	mu       sync.Mutex
	started  []runner.Trial
	finished []runner.Result
}

func (o *recordingObserver) TrialStarted(t runner.Trial) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, t)
}

func (o *recordingObserver) TrialFinished(res runner.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, res)
}

func mustLookup(t *testing.T, kind strategy.Kind) strategy.Strategy {
	t.Helper()
	s, ok := strategy.Lookup(kind)
	if !ok {
		t.Fatalf("strategy %s not in catalog", kind)
	}
	return s
}

// TestExactStrategiesReachThreadsTimesIterations covers every strategy that
// guarantees no lost updates.
func TestExactStrategiesReachThreadsTimesIterations(t *testing.T) {
	shapes := []struct{ threads, iterations int }{
		{1, 1},
		{1, 500},
		{4, 1000},
		{8, 250},
	}

	for _, s := range strategy.Catalog() {
		if !s.Exact() {
			continue
		}
		for _, shape := range shapes {
			r := runner.New(runner.Options{Threads: shape.threads, Iterations: shape.iterations})
			res := r.Run(s)
			want := int64(shape.threads * shape.iterations)
			if res.FinalValue != want {
				t.Errorf("%s (%dx%d): final = %d, want %d", s.Label, shape.threads, shape.iterations, res.FinalValue, want)
			}
			if !res.Correct() {
				t.Errorf("%s (%dx%d): Correct() = false", s.Label, shape.threads, shape.iterations)
			}
			if res.Lost != 0 {
				t.Errorf("%s: expected no lost updates, got %d", s.Label, res.Lost)
			}
		}
	}
}

// TestNonAtomicNeverExceedsExpected asserts only the inequality; the exact
// undercount depends on the scheduler.
func TestNonAtomicNeverExceedsExpected(t *testing.T) {
	s := mustLookup(t, strategy.NonAtomic)
	r := runner.New(runner.Options{Threads: 4, Iterations: 1000})

	for i := 0; i < 5; i++ {
		res := r.Run(s)
		if res.FinalValue < 1 || res.FinalValue > 4000 {
			t.Fatalf("run %d: final = %d, want within [1, 4000]", i, res.FinalValue)
		}
		if res.Lost != res.Expected-res.FinalValue {
			t.Fatalf("run %d: lost = %d, want %d", i, res.Lost, res.Expected-res.FinalValue)
		}
		if !res.Correct() {
			t.Fatalf("run %d: undercount must not be reported as incorrect", i)
		}
	}
}

func TestNonAtomicSingleWorkerIsExact(t *testing.T) {
	s := mustLookup(t, strategy.NonAtomic)
	r := runner.New(runner.Options{Threads: 1, Iterations: 10_000})
	if res := r.Run(s); res.FinalValue != 10_000 {
		t.Fatalf("final = %d, want 10000", res.FinalValue)
	}
}

func TestScenarioFourThreadsThousandIterations(t *testing.T) {
	r := runner.New(runner.Options{Threads: 4, Iterations: 1000})
	for _, s := range strategy.Catalog() {
		res := r.Run(s)
		if res.Expected != 4000 {
			t.Fatalf("%s: expected = %d, want 4000", s.Label, res.Expected)
		}
		if s.Exact() && res.FinalValue != 4000 {
			t.Errorf("%s: final = %d, want 4000", s.Label, res.FinalValue)
		}
		if !s.Exact() && (res.FinalValue < 1 || res.FinalValue > 4000) {
			t.Errorf("%s: final = %d, want within [1, 4000]", s.Label, res.FinalValue)
		}
		if res.ElapsedMs < 0 {
			t.Errorf("%s: negative elapsed %f", s.Label, res.ElapsedMs)
		}
	}
}

func TestCounterStartsAtZeroForEveryTrial(t *testing.T) {
	obs := &recordingObserver{}
	r := runner.New(runner.Options{Threads: 2, Iterations: 100, Observer: obs})

	for _, s := range strategy.Catalog() {
		r.Run(s)
	}

	if len(obs.started) != len(strategy.Catalog()) {
		t.Fatalf("expected %d started callbacks, got %d", len(strategy.Catalog()), len(obs.started))
	}
	for _, trial := range obs.started {
		if trial.InitialValue != 0 {
			t.Errorf("%s: counter read %d before workers were spawned", trial.Strategy.Label, trial.InitialValue)
		}
	}
}

func TestWorkerStatsMatchPoolSize(t *testing.T) {
	r := runner.New(runner.Options{Threads: 3, Iterations: 100})

	res := r.Run(mustLookup(t, strategy.Mutex))
	if res.Workers.Workers != 3 {
		t.Errorf("expected 3 worker samples, got %d", res.Workers.Workers)
	}
	if res.Workers.MaxMs > res.ElapsedMs {
		t.Errorf("last worker (%f) finished after the trial ended (%f)", res.Workers.MaxMs, res.ElapsedMs)
	}

	if got := r.Spawned(); got != 3 {
		t.Errorf("Spawned() = %d after one Mutex trial, want 3", got)
	}
}

func TestSingleThreadedSpawnsNoGoroutines(t *testing.T) {
	r := runner.New(runner.Options{Threads: 8, Iterations: 10_000})

	before := runtime.NumGoroutine()
	single := r.Run(mustLookup(t, strategy.SingleThreaded))
	after := runtime.NumGoroutine()

	if got := r.Spawned(); got != 0 {
		t.Errorf("Spawned() = %d, want 0 for SingleThreaded", got)
	}
	if after != before {
		t.Errorf("goroutines before=%d after=%d, want unchanged", before, after)
	}
	if single.Workers.Workers != 0 {
		t.Errorf("SingleThreaded recorded %d worker samples, want 0", single.Workers.Workers)
	}
	if single.FinalValue != 80_000 {
		t.Errorf("SingleThreaded final = %d, want 80000", single.FinalValue)
	}

	r.RunInline(mustLookup(t, strategy.AtomicRelaxed))
	if got := r.Spawned(); got != 0 {
		t.Errorf("Spawned() = %d after an inline baseline, want 0", got)
	}
}

func TestLargerWorkloadIsNotFaster(t *testing.T) {
	if testing.Short() {
		t.Skip("timing comparison skipped in short mode")
	}

	tests := []struct {
		kind  strategy.Kind
		small runner.Options
		large runner.Options
	}{
		{strategy.SingleThreaded, runner.Options{Threads: 1, Iterations: 1000}, runner.Options{Threads: 4, Iterations: 25_000_000}},
		{strategy.AtomicRelaxed, runner.Options{Threads: 1, Iterations: 1000}, runner.Options{Threads: 4, Iterations: 1_000_000}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := mustLookup(t, tt.kind)
			small := runner.New(tt.small).Run(s)
			large := runner.New(tt.large).Run(s)

			if large.Elapsed < small.Elapsed {
				t.Errorf("%d increments took %s, less than %d increments in %s",
					large.Expected, large.Elapsed, small.Expected, small.Elapsed)
			}
			if large.FinalValue != large.Expected {
				t.Errorf("large final = %d, want %d", large.FinalValue, large.Expected)
			}
		})
	}
}

func TestRunInlineIsExactForEveryStrategy(t *testing.T) {
	r := runner.New(runner.Options{Threads: 4, Iterations: 500})
	for _, s := range strategy.Catalog() {
		res := r.RunInline(s)
		if !res.Baseline {
			t.Errorf("%s: baseline flag not set", s.Label)
		}
		if res.FinalValue != 2000 {
			t.Errorf("%s: inline final = %d, want 2000", s.Label, res.FinalValue)
		}
		if res.Workers.Workers != 0 {
			t.Errorf("%s: inline run must not spawn workers", s.Label)
		}
	}
}

func TestSuiteRunsStrategiesInOrder(t *testing.T) {
	obs := &recordingObserver{}
	r := runner.New(runner.Options{Threads: 2, Iterations: 50, Observer: obs})
	suite := &runner.Suite{Runner: r}

	report, err := suite.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if report.Threads != 2 || report.Iterations != 50 {
		t.Errorf("unexpected shape %dx%d", report.Threads, report.Iterations)
	}

	names := strategy.Names()
	if len(report.Trials) != len(names) {
		t.Fatalf("expected %d trials, got %d", len(names), len(report.Trials))
	}
	for i, name := range names {
		if report.Trials[i].Label != name {
			t.Errorf("trial[%d] = %q, want %q", i, report.Trials[i].Label, name)
		}
		if obs.finished[i].Label != name {
			t.Errorf("observer finish[%d] = %q, want %q", i, obs.finished[i].Label, name)
		}
	}
	if len(report.Comparisons) != 0 {
		t.Errorf("expected no comparisons, got %d", len(report.Comparisons))
	}
}

func TestSuiteCompareModePairsBaselines(t *testing.T) {
	r := runner.New(runner.Options{Threads: 2, Iterations: 100})
	selected, err := strategy.Select([]string{"relaxed", "mutex"})
	if err != nil {
		t.Fatal(err)
	}
	suite := &runner.Suite{Runner: r, Strategies: selected, Compare: true}

	report, err := suite.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(report.Comparisons))
	}
	for _, c := range report.Comparisons {
		if c.Multi.Baseline || !c.Baseline.Baseline {
			t.Errorf("%s: pair members mislabeled", c.Label)
		}
		if c.Multi.Label != c.Baseline.Label {
			t.Errorf("pair labels differ: %q vs %q", c.Multi.Label, c.Baseline.Label)
		}
		if c.DifferenceMs != c.Multi.ElapsedMs-c.Baseline.ElapsedMs {
			t.Errorf("%s: difference mismatch", c.Label)
		}
	}
}

func TestSuiteStopsBetweenTrialsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	obs := &recordingObserver{}
	r := runner.New(runner.Options{Threads: 1, Iterations: 10, Observer: cancelAfterFirst{cancel: cancel, next: obs}})
	suite := &runner.Suite{Runner: r}

	_, err := suite.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(obs.finished) != 1 {
		t.Fatalf("expected the running trial to complete and no other to start, got %d", len(obs.finished))
	}
}

type cancelAfterFirst struct {
	cancel context.CancelFunc
	next   runner.Observer
}

func (c cancelAfterFirst) TrialStarted(t runner.Trial) { c.next.TrialStarted(t) }

func (c cancelAfterFirst) TrialFinished(res runner.Result) {
	c.next.TrialFinished(res)
	c.cancel()
}

func TestSuiteWithoutRunner(t *testing.T) {
	if _, err := (&runner.Suite{}).Run(context.Background()); err == nil {
		t.Fatal("expected error for missing runner")
	}
}

func TestSpeedup(t *testing.T) {
	tests := []struct {
		multi, base, want float64
	}{
		{10, 5, 2},
		{5, 10, 0.5},
		{7, 0, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := runner.Speedup(tt.multi, tt.base); got != tt.want {
			t.Errorf("Speedup(%v, %v) = %v, want %v", tt.multi, tt.base, got, tt.want)
		}
	}
}

func TestObserversSkipsNil(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := runner.Observers(a, nil, b)
	obs.TrialStarted(runner.Trial{})
	obs.TrialFinished(runner.Result{})
	if len(a.started) != 1 || len(b.finished) != 1 {
		t.Fatal("expected both observers to receive callbacks")
	}

	// No observers must still be callable.
	runner.Observers().TrialStarted(runner.Trial{})
}
