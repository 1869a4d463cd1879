package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/threshold"
)

const (
	columnWidth        = 25
	compareColumnWidth = 18
)

// PrintReport outputs the human-readable results table.
func PrintReport(w io.Writer, report runner.Report) {
	fmt.Fprintf(w, "Threads: %d\n", report.Threads)
	fmt.Fprintf(w, "Iteration: %d\n\n", report.Iterations)

	if report.Compare && len(report.Comparisons) > 0 {
		printComparisonTable(w, report.Comparisons)
		return
	}

	writeRow(w, columnWidth, "Memory Order", "Multithreaded (ms)", "Counter Values")
	fmt.Fprintln(w, strings.Repeat("-", 3*columnWidth))
	for _, trial := range report.Trials {
		writeRow(w, columnWidth,
			trial.Label,
			formatMillis(trial.ElapsedMs),
			fmt.Sprintf("%d", trial.FinalValue),
		)
	}
}

func printComparisonTable(w io.Writer, comparisons []runner.Comparison) {
	writeRow(w, compareColumnWidth,
		"Memory Order",
		"Multithreaded (ms)",
		"Single (ms)",
		"Difference (ms)",
		"Speed-up",
		"Counter (MT)",
		"Counter (ST)",
	)
	fmt.Fprintln(w, strings.Repeat("-", 7*compareColumnWidth))
	for _, c := range comparisons {
		writeRow(w, compareColumnWidth,
			c.Label,
			formatMillis(c.Multi.ElapsedMs),
			formatMillis(c.Baseline.ElapsedMs),
			formatMillis(c.DifferenceMs),
			fmt.Sprintf("%.2fx", c.Speedup),
			fmt.Sprintf("%d", c.Multi.FinalValue),
			fmt.Sprintf("%d", c.Baseline.FinalValue),
		)
	}
}

// PrintDetails outputs worker completion statistics and lost updates for
// every trial.
func PrintDetails(w io.Writer, report runner.Report) {
	fmt.Fprintln(w, "\nWorker Completion (ms):")
	for _, trial := range report.Trials {
		if trial.Workers.Workers == 0 {
			fmt.Fprintf(w, "  - %s: inline, no workers\n", trial.Label)
			continue
		}
		fmt.Fprintf(
			w,
			"  - %s: workers=%d, min=%s, p50=%s, p99=%s, max=%s, spread=%s\n",
			trial.Label,
			trial.Workers.Workers,
			formatMillis(trial.Workers.MinMs),
			formatMillis(trial.Workers.P50Ms),
			formatMillis(trial.Workers.P99Ms),
			formatMillis(trial.Workers.MaxMs),
			formatMillis(trial.Workers.SpreadMs),
		)
	}

	fmt.Fprintln(w, "\nCounter Check:")
	for _, trial := range report.Trials {
		status := "exact"
		switch {
		case trial.Lost > 0:
			status = fmt.Sprintf("lost %d updates (%.2f%%)", trial.Lost, lostShare(trial))
		case !trial.Correct():
			status = fmt.Sprintf("unexpected value, want %d", trial.Expected)
		}
		fmt.Fprintf(w, "  - %s: %d / %d %s\n", trial.Label, trial.FinalValue, trial.Expected, status)
	}
	fmt.Fprintf(w, "\nRun %s finished in %s ms\n", report.RunID, formatMillis(report.DurationMs))
}

// PrintThresholdResults outputs the outcome of every threshold.
func PrintThresholdResults(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}
	fmt.Fprintf(w, "\nThresholds: %d/%d passed\n", passed, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report runner.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func writeRow(w io.Writer, width int, cells ...string) {
	var sb strings.Builder
	for _, cell := range cells {
		sb.WriteString(fmt.Sprintf("%-*s", width, cell))
	}
	fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
}

func formatMillis(ms float64) string {
	return fmt.Sprintf("%.3f", ms)
}

func lostShare(trial runner.Result) float64 {
	if trial.Expected == 0 {
		return 0
	}
	return float64(trial.Lost) / float64(trial.Expected) * 100
}
