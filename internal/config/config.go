package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/strategy"
	"github.com/torosent/syncbench/internal/threshold"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

type Config struct {
	Threads    int           `mapstructure:"threads"`
	Iterations int           `mapstructure:"iterations"`
	Strategies []string      `mapstructure:"strategies"`
	Compare    bool          `mapstructure:"compare"`
	Format     Format        `mapstructure:"format"`
	Details    bool          `mapstructure:"details"`
	Dashboard  bool          `mapstructure:"dashboard"`
	LockFile   string        `mapstructure:"lock_file"`
	Thresholds []string      `mapstructure:"thresholds"`
	Verbose    bool          `mapstructure:"verbose"`
	Tracing    TracingConfig `mapstructure:"tracing"`
	ConfigFile string        `mapstructure:"-"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector address (host:port)
	Protocol    string  `mapstructure:"protocol"`     // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`     // Disable TLS towards the collector
	ServiceName string  `mapstructure:"service_name"` // Defaults to OTEL_SERVICE_NAME or "syncbench"
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0 keeps every span
}

// Enabled reports whether an exporter endpoint was configured explicitly.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Threads > 1024 {
		fmt.Fprintf(os.Stderr, "WARNING: High thread count configured (%d workers). Timings will mostly measure scheduler overhead.\n", c.Threads)
	}

	if c.Threads < 0 {
		issues = append(issues, "threads must be >= 0 (0 means hardware concurrency)")
	}
	if c.Iterations < 0 {
		issues = append(issues, "iterations must be >= 0 (0 means the default workload)")
	}
	if threads, iterations := c.effectiveWorkload(); threads > 0 && iterations > 0 && int64(iterations) > math.MaxInt64/int64(threads) {
		issues = append(issues, fmt.Sprintf("threads * iterations overflows the counter (%d x %d)", threads, iterations))
	}

	if _, err := strategy.Select(c.Strategies); err != nil {
		issues = append(issues, err.Error())
	}

	switch c.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		issues = append(issues, fmt.Sprintf("format %q is not supported (use table, json or yaml)", c.Format))
	}
	if c.Dashboard && c.Format != FormatTable {
		issues = append(issues, "dashboard and json/yaml output are mutually exclusive")
	}

	if _, err := threshold.ParseMultiple(c.Thresholds); err != nil {
		issues = append(issues, err.Error())
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

// effectiveWorkload resolves zero values the way the runner will.
func (c Config) effectiveWorkload() (threads, iterations int) {
	threads, iterations = c.Threads, c.Iterations
	if threads == 0 {
		threads = runner.DefaultThreads()
	}
	if iterations == 0 {
		iterations = runner.DefaultIterations
	}
	return threads, iterations
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol %q is not supported (use grpc or http)", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, "tracing: sample_rate must be between 0.0 and 1.0")
	}
	if t.Insecure && !t.Enabled() {
		fmt.Fprintln(os.Stderr, "WARNING: tracing insecure is set without an endpoint; it only applies when OTEL_EXPORTER_OTLP_ENDPOINT is set.")
	}
	return issues
}
