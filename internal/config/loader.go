package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/torosent/syncbench/internal/runner"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Without arguments the full default suite is configured.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Iterations: runner.DefaultIterations,
		Format:     FormatTable,
		ConfigFile: configPath,
		Tracing:    TracingConfig{Protocol: "grpc"},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Format = Format(strings.ToLower(strings.TrimSpace(string(cfg.Format))))
	cfg.LockFile = strings.TrimSpace(cfg.LockFile)

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "threads"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("threads: %w", err)
		}
		cfg.Threads = val
	}

	if raw, ok := lookupSetting(settings, "iterations"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("iterations: %w", err)
		}
		cfg.Iterations = val
	}

	if raw, ok := lookupSetting(settings, "strategies", "strategy"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("strategies: %w", err)
		}
		cfg.Strategies = val
	}

	if raw, ok := lookupSetting(settings, "compare"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		cfg.Compare = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		if val {
			cfg.Format = FormatJSON
		}
	}

	if raw, ok := lookupSetting(settings, "format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		if val != "" {
			cfg.Format = Format(val)
		}
	}

	if raw, ok := lookupSetting(settings, "details"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("details: %w", err)
		}
		cfg.Details = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "verbose"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("verbose: %w", err)
		}
		cfg.Verbose = val
	}

	if raw, ok := lookupSetting(settings, "lockfile", "lock_file", "lock-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("lockFile: %w", err)
		}
		cfg.LockFile = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracingConfig(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracingConfig(value interface{}, base TracingConfig) (TracingConfig, error) {
	if value == nil {
		return base, nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	return buildTracingConfig(settings, base)
}

func buildTracingConfig(settings map[string]interface{}, cfg TracingConfig) (TracingConfig, error) {
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		cfg.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if val != "" {
			cfg.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		cfg.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("serviceName: %w", err)
		}
		cfg.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sampleRate: %w", err)
		}
		cfg.SampleRate = val
	}
	return cfg, nil
}
