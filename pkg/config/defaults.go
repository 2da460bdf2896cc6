package config

import (
	"strings"

	"github.com/marmos91/fastpasta/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyStatusAPIDefaults(&cfg.StatusAPI)
	applyDecodeDefaults(&cfg.Decode)
	applyStatsDefaults(&cfg.Stats)
	applyHistoryDefaults(&cfg.History)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyStatusAPIDefaults sets status API defaults.
func applyStatusAPIDefaults(cfg *StatusAPIConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9091
	}
}

// applyDecodeDefaults sets decode/validate option defaults.
func applyDecodeDefaults(cfg *DecodeConfig) {
	if cfg.Filter.Kind == "" {
		cfg.Filter.Kind = "none"
	}
	if cfg.OutputMode == "" {
		cfg.OutputMode = "none"
	}
	if cfg.DispatchKey == "" {
		cfg.DispatchKey = "link"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	// MaxTolerateErrors, SkipPayload, MuteErrors, ViewMode, AlpideChecksEnabled,
	// PixelSensor, and MaxInputSize all have meaningful zero values (unlimited
	// or disabled) and need no default override.
}

// applyStatsDefaults sets stats report output defaults.
func applyStatsDefaults(cfg *StatsConfig) {
	if cfg.StatsOutputMode == "" {
		cfg.StatsOutputMode = "none"
	}
	if cfg.StatsOutputFormat == "" {
		cfg.StatsOutputFormat = "json"
	}
}

// applyHistoryDefaults sets run-history store defaults.
func applyHistoryDefaults(cfg *HistoryConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.Driver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = GetConfigDir() + "/history.db"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Decode: DecodeConfig{
			MaxInputSize: bytesize.ByteSize(0), // unlimited
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
