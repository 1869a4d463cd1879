package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/syncbench/internal/strategy"
)

// Comparison pairs a multithreaded trial with its inline baseline.
type Comparison struct {
	Label        string  `json:"label" yaml:"label"`
	Multi        Result  `json:"multithreaded" yaml:"multithreaded"`
	Baseline     Result  `json:"baseline" yaml:"baseline"`
	DifferenceMs float64 `json:"difference_ms" yaml:"difference_ms"`
	Speedup      float64 `json:"speedup" yaml:"speedup"`
}

// NewComparison derives the difference and ratio columns of a pair.
func NewComparison(multi, baseline Result) Comparison {
	return Comparison{
		Label:        multi.Label,
		Multi:        multi,
		Baseline:     baseline,
		DifferenceMs: multi.ElapsedMs - baseline.ElapsedMs,
		Speedup:      Speedup(multi.ElapsedMs, baseline.ElapsedMs),
	}
}

// Speedup returns multi/baseline, or 0 when the baseline took no time.
func Speedup(multiMs, baselineMs float64) float64 {
	if baselineMs == 0 {
		return 0
	}
	return multiMs / baselineMs
}

// Report is the outcome of a whole suite.
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Threads     int           `json:"threads" yaml:"threads"`
	Iterations  int           `json:"iterations" yaml:"iterations"`
	Compare     bool          `json:"compare" yaml:"compare"`
	Trials      []Result      `json:"trials" yaml:"trials"`
	Comparisons []Comparison  `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Duration    time.Duration `json:"-" yaml:"-"`
	DurationMs  float64       `json:"duration_ms" yaml:"duration_ms"`
}

// Find returns the multithreaded trial with the given strategy kind.
func (r Report) Find(kind strategy.Kind) (Result, bool) {
	for _, t := range r.Trials {
		if t.Strategy.Kind == kind {
			return t, true
		}
	}
	return Result{}, false
}

// Suite runs a fixed list of strategies through one Runner.
type Suite struct {
	Runner     *Runner
	Strategies []strategy.Strategy // nil means the whole catalog
	Compare    bool
}

// Run executes every strategy in order. The context is only consulted
// between trials; an interrupted suite returns no report.
func (s *Suite) Run(ctx context.Context) (Report, error) {
	if s.Runner == nil {
		return Report{}, fmt.Errorf("suite has no runner")
	}
	strategies := s.Strategies
	if len(strategies) == 0 {
		strategies = strategy.Catalog()
	}

	report := Report{
		RunID:      ulid.Make().String(),
		StartedAt:  time.Now(),
		Threads:    s.Runner.Threads(),
		Iterations: s.Runner.Iterations(),
		Compare:    s.Compare,
		Trials:     make([]Result, 0, len(strategies)),
	}

	for _, st := range strategies {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("suite stopped before %s: %w", st, err)
		}
		res := s.Runner.Run(st)
		report.Trials = append(report.Trials, res)

		if s.Compare {
			base := s.Runner.RunInline(st)
			report.Comparisons = append(report.Comparisons, NewComparison(res, base))
		}
	}

	report.Duration = time.Since(report.StartedAt)
	report.DurationMs = float64(report.Duration) / float64(time.Millisecond)
	return report, nil
}
