package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/torosent/syncbench/internal/runner"
	"github.com/torosent/syncbench/internal/strategy"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "syncbench",
		Short:         "Benchmark counter synchronization strategies",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Workload flags
	flags.IntP("threads", "n", 0, fmt.Sprintf("Worker goroutines per trial (0 means hardware concurrency, falling back to %d)", runner.FallbackThreads))
	flags.IntP("iterations", "i", runner.DefaultIterations, "Increments performed by each worker")
	flags.StringSliceP("strategy", "s", nil, "Strategies to run, in order (repeatable; default: "+strings.Join(strategy.Names(), ",")+")")
	flags.Bool("compare", false, "Pair every strategy with a single-goroutine baseline of the same total work")

	// Output flags
	flags.StringP("format", "o", string(FormatTable), "Report format: table, json or yaml")
	flags.Bool("json-output", false, "Emit JSON formatted output (same as --format json)")
	flags.Bool("details", false, "Print worker completion statistics after the table")
	flags.Bool("dashboard", false, "Show live terminal dashboard while trials run (periodic redraws pause during each timed trial)")
	flags.BoolP("verbose", "v", false, "Log trial progress to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Host coordination
	flags.String("lock-file", "", "Hold an exclusive lock on this file for the duration of the run")

	// Thresholds
	flags.StringSlice("threshold", nil, "Assertions on trial results (repeatable, e.g. 'relaxed:elapsed_ms < 500')")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint for trial spans (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS towards the OTLP collector")
	flags.String("tracing-service-name", "", "Service name reported with spans (default syncbench)")
	flags.Float64("tracing-sample-rate", 0, "Fraction of spans to sample (0 keeps every span)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("threads") {
		val, err := fs.GetInt("threads")
		if err != nil {
			return err
		}
		cfg.Threads = val
	}
	if fs.Changed("iterations") {
		val, err := fs.GetInt("iterations")
		if err != nil {
			return err
		}
		cfg.Iterations = val
	}
	if fs.Changed("strategy") {
		val, err := fs.GetStringSlice("strategy")
		if err != nil {
			return err
		}
		cfg.Strategies = val
	}
	if fs.Changed("compare") {
		val, err := fs.GetBool("compare")
		if err != nil {
			return err
		}
		cfg.Compare = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		if val {
			cfg.Format = FormatJSON
		}
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = Format(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("details") {
		val, err := fs.GetBool("details")
		if err != nil {
			return err
		}
		cfg.Details = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	return applyTracingFlagOverrides(&cfg.Tracing, fs)
}

func applyTracingFlagOverrides(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	return nil
}
