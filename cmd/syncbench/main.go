package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/torosent/syncbench/internal/config"
	"github.com/torosent/syncbench/internal/dashboard"
	"github.com/torosent/syncbench/internal/output"
	"github.com/torosent/syncbench/internal/runlock"
	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/strategy"
	"github.com/torosent/syncbench/internal/threshold"
	"github.com/torosent/syncbench/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

type stderrLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *stderrLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[syncbench] "+format+"\n", args...)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	strategies, err := strategy.Select(cfg.Strategies)
	if err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	logger := &stderrLogger{w: stderr}

	if cfg.LockFile != "" {
		lock, err := runlock.Acquire(cfg.LockFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Printf("releasing run lock: %v", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Printf("tracing shutdown: %v", err)
		}
	}()

	threads := cfg.Threads
	if threads <= 0 {
		threads = runner.DefaultThreads()
	}
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = runner.DefaultIterations
	}
	trials := len(strategies)
	if cfg.Compare {
		trials *= 2
	}

	var observers []runner.Observer
	if cfg.Verbose {
		logger.Printf("running %d trials with %d threads x %d iterations", trials, threads, iterations)
		observers = append(observers, output.NewProgressReporter(stderr, trials))
	}

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(dashboard.RunInfo{
			Threads:    threads,
			Iterations: iterations,
			Strategies: len(strategies),
			Compare:    cfg.Compare,
			ConfigFile: cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		observers = append(observers, dash)
	}

	var suiteTracer *tracing.SuiteTracer
	if provider.Enabled() {
		suiteTracer = tracing.NewSuiteTracer(provider.Tracer())
		observers = append(observers, suiteTracer)
		ctx = suiteTracer.StartSuite(ctx, threads, iterations)
	}

	r := runner.New(runner.Options{
		Threads:    threads,
		Iterations: iterations,
		Observer:   runner.Observers(observers...),
	})
	suite := &runner.Suite{Runner: r, Strategies: strategies, Compare: cfg.Compare}

	if dash != nil {
		dash.Start()
	}
	report, runErr := suite.Run(ctx)
	if dash != nil {
		dash.Stop()
	}
	if suiteTracer != nil {
		suiteTracer.EndSuite(report.RunID, runErr)
	}
	if runErr != nil {
		return runErr
	}

	if err := writeReport(stdout, cfg, report); err != nil {
		return err
	}

	if len(thresholds) == 0 {
		return nil
	}
	results := threshold.NewEvaluator(thresholds).Evaluate(report)
	thresholdOut := stdout
	if cfg.Format != config.FormatTable {
		// Keep machine-readable stdout parseable.
		thresholdOut = stderr
	}
	output.PrintThresholdResults(thresholdOut, results)
	if !threshold.AllPassed(results) {
		return fmt.Errorf("%d of %d thresholds failed", countFailed(results), len(results))
	}
	return nil
}

func writeReport(w io.Writer, cfg *config.Config, report runner.Report) error {
	switch cfg.Format {
	case config.FormatJSON:
		return output.PrintJSONReport(w, report)
	case config.FormatYAML:
		return output.PrintYAMLReport(w, report)
	default:
		output.PrintReport(w, report)
		if cfg.Details {
			output.PrintDetails(w, report)
		}
		return nil
	}
}

func countFailed(results []threshold.Result) int {
	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	return failed
}
