package runner

import "github.com/torosent/syncbench/internal/strategy"

// Trial describes a trial that is about to spawn its workers.
type Trial struct {
	Strategy   strategy.Strategy
	Threads    int
	Iterations int
	Baseline   bool
	// InitialValue is the counter value right before the workload starts.
	InitialValue int64
}

// Observer follows the trial lifecycle. Callbacks run on the goroutine that
// drives the trial, outside the measured section.
type Observer interface {
	TrialStarted(t Trial)
	TrialFinished(res Result)
}

type nopObserver struct{}

func (nopObserver) TrialStarted(Trial)   {}
func (nopObserver) TrialFinished(Result) {}

type multiObserver []Observer

func (m multiObserver) TrialStarted(t Trial) {
	for _, o := range m {
		o.TrialStarted(t)
	}
}

func (m multiObserver) TrialFinished(res Result) {
	for _, o := range m {
		o.TrialFinished(res)
	}
}

// Observers fans callbacks out to every non-nil observer, in order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return nopObserver{}
	case 1:
		return list[0]
	default:
		return list
	}
}
