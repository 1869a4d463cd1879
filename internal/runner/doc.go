// Package runner provides the benchmark execution engine for syncbench.
//
// A [Runner] executes one trial at a time: it allocates a fresh counter,
// starts the timer, lets a pool of workers increment the counter with the
// operation chosen by a [strategy.Strategy], waits for every worker, stops
// the timer and reports the final counter value.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Threads:    4,
//		Iterations: 1000,
//	})
//	s, _ := strategy.Lookup(strategy.Mutex)
//	res := r.Run(s)
//	fmt.Println(res.ElapsedMs, res.FinalValue)
//
// # Suites
//
// A [Suite] drives a list of strategies through one Runner, strictly one
// trial after another, and collects a [Report]. In compare mode every trial
// is paired with a baseline that applies the same increment operation on the
// calling goroutine only.
//
// # Observers
//
// Implement [Observer] to follow trials as they start and finish. Progress
// output, the dashboard and tracing are all observers; combine them with
// [Observers].
//
// # Concurrency
//
// Workers are plain goroutines created per trial and joined with a
// sync.WaitGroup before the timer stops. Trials never overlap and a trial is
// never cancelled once started; a Suite only checks its context between
// trials.
package runner
