// Package threshold evaluates user supplied assertions against a suite report.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/strategy"
)

// AllStrategies matches every trial in the report.
const AllStrategies = "*"

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Strategy string  // catalog label, or "*" for every trial
	Metric   string  // e.g., "elapsed_ms", "lost_updates", "speedup"
	Operator string  // e.g., "<", "<=", ">", ">=", "=="
	Value    float64 // The threshold value to compare against
	Raw      string  // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold against one trial.
type Result struct {
	Threshold Threshold
	Label     string
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against a report.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the provided report.
func (e *Evaluator) Evaluate(report runner.Report) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		if t.Strategy == AllStrategies {
			for _, trial := range report.Trials {
				results = append(results, evaluateOne(t, trial.Label, report))
			}
			continue
		}
		results = append(results, evaluateOne(t, t.Strategy, report))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, label string, report runner.Report) Result {
	actual, err := extractMetricValue(t.Metric, label, report)
	if err != nil {
		return Result{
			Threshold: t,
			Label:     label,
			Pass:      false,
			Message:   fmt.Sprintf("✗ %s [%s]: error: %v", t.Raw, label, err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Label:     label,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s [%s]: %.2f %s %.2f", status, t.Raw, label, actual, t.Operator, t.Value),
	}
}

var thresholdPattern = regexp.MustCompile(`^([A-Za-z_\-*]+):([a-z0-9_]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "relaxed:elapsed_ms < 500"       (trial wall time in ms)
// - "nonatomic:lost_updates >= 0"    (expected minus final counter value)
// - "mutex:final_value == 4000"      (final counter value)
// - "*:worker_p99_ms < 100"          (worker completion P99, every trial)
// - "*:worker_spread_ms < 50"        (last minus first worker completion)
// - "seq_cst:speedup < 20"           (multithreaded / baseline, compare mode)
// - "release:baseline_ms < 100"      (baseline wall time, compare mode)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: strategy:metric operator value, e.g., 'relaxed:elapsed_ms < 500')", s)
	}

	name := matches[1]
	metric := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	label := AllStrategies
	if name != AllStrategies {
		st, err := strategy.Parse(name)
		if err != nil {
			return Threshold{}, err
		}
		label = st.Label
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: %s)", metric, strings.Join(validMetrics, ", "))
	}

	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Strategy: label,
		Metric:   metric,
		Operator: operator,
		Value:    value,
		Raw:      s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

var validMetrics = []string{"elapsed_ms", "final_value", "lost_updates", "worker_p99_ms", "worker_spread_ms", "speedup", "baseline_ms"}

func isValidMetric(metric string) bool {
	for _, v := range validMetrics {
		if metric == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func extractMetricValue(metric, label string, report runner.Report) (float64, error) {
	switch metric {
	case "speedup", "baseline_ms":
		cmp, ok := findComparison(report, label)
		if !ok {
			return 0, fmt.Errorf("no comparison for %s (run with --compare)", label)
		}
		if metric == "speedup" {
			return cmp.Speedup, nil
		}
		return cmp.Baseline.ElapsedMs, nil
	}

	trial, ok := findTrial(report, label)
	if !ok {
		return 0, fmt.Errorf("strategy %s was not run", label)
	}
	switch metric {
	case "elapsed_ms":
		return trial.ElapsedMs, nil
	case "final_value":
		return float64(trial.FinalValue), nil
	case "lost_updates":
		return float64(trial.Lost), nil
	case "worker_p99_ms":
		return trial.Workers.P99Ms, nil
	case "worker_spread_ms":
		return trial.Workers.SpreadMs, nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", metric)
	}
}

func findTrial(report runner.Report, label string) (runner.Result, bool) {
	for _, t := range report.Trials {
		if t.Label == label {
			return t, true
		}
	}
	return runner.Result{}, false
}

func findComparison(report runner.Report, label string) (runner.Comparison, bool) {
	for _, c := range report.Comparisons {
		if c.Label == label {
			return c, true
		}
	}
	return runner.Comparison{}, false
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
