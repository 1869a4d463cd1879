package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/torosent/syncbench/internal/runner"
)

// ProgressReporter writes one line when a trial starts and one when it
// finishes. It implements runner.Observer.
type ProgressReporter struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	started int
}

// NewProgressReporter creates a reporter for a suite of total trials.
func NewProgressReporter(writer io.Writer, total int) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{writer: writer, total: total}
}

func (p *ProgressReporter) TrialStarted(t runner.Trial) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started++
	mode := fmt.Sprintf("%d workers x %d", t.Threads, t.Iterations)
	if t.Baseline || !t.Strategy.Concurrent() {
		mode = fmt.Sprintf("inline x %d", int64(t.Threads)*int64(t.Iterations))
	}
	fmt.Fprintf(p.writer, "[syncbench] %s %s (%s)\n", p.position(), t.Strategy.Label, mode)
}

func (p *ProgressReporter) TrialFinished(res runner.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kind := "trial"
	if res.Baseline {
		kind = "baseline"
	}
	fmt.Fprintf(p.writer, "[syncbench] %s %s done in %.3fms, counter=%d\n", res.Label, kind, res.ElapsedMs, res.FinalValue)
}

func (p *ProgressReporter) position() string {
	if p.total <= 0 {
		return fmt.Sprintf("[%d]", p.started)
	}
	return fmt.Sprintf("[%d/%d]", p.started, p.total)
}
