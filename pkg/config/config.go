package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/fastpasta/internal/bytesize"
	"github.com/marmos91/fastpasta/internal/scanner"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the fastpasta decoder/validator configuration.
//
// This structure captures the opaque "Config capability" spec.md §6
// leaves unspecified: ambient concerns (logging, telemetry, metrics,
// the status API) plus the decode/stats options a run is invoked with
// (filtering, error tolerance, output destinations).
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FASTPASTA_*) (highest priority)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// No CLI flag overrides a configuration value; --config only selects the
// file.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// StatusAPI contains the read-only run-status HTTP server configuration
	StatusAPI StatusAPIConfig `mapstructure:"status_api" yaml:"status_api"`

	// Decode holds the per-run decode/validate options
	Decode DecodeConfig `mapstructure:"decode" yaml:"decode"`

	// Stats controls how the finalized stats report is emitted
	Stats StatsConfig `mapstructure:"stats" yaml:"stats"`

	// History configures the optional SQL-backed run-history store
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: false (require TLS in production)
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
// When enabled, CPU and memory profiles are continuously sent to a Pyroscope server
// for flame graph visualization and performance analysis.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead): the
// dispatcher/collector are built with metrics.Null() instead of metrics.New.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// StatusAPIConfig configures the read-only run-status HTTP server
// (internal/statusapi) exposing /healthz and /status.
type StatusAPIConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the status endpoint
	// Default: 9091
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// FilterConfig mirrors scanner.FilterTarget (spec §4.3) in a
// config-file-friendly shape: a string kind plus the id it carries,
// rather than scanner's internal int enum.
type FilterConfig struct {
	// Kind selects the filter: none, link, fee, or its_layer_stave
	Kind string `mapstructure:"kind" validate:"omitempty,oneof=none link fee its_layer_stave" yaml:"kind"`

	// Link holds the link id when Kind == "link"
	Link uint8 `mapstructure:"link" yaml:"link,omitempty"`

	// Fee holds the fee id when Kind == "fee" or "its_layer_stave"
	Fee uint16 `mapstructure:"fee" yaml:"fee,omitempty"`
}

// ToScannerTarget converts the config-file shape into scanner.FilterTarget.
func (f FilterConfig) ToScannerTarget() scanner.FilterTarget {
	switch f.Kind {
	case "link":
		return scanner.FilterTarget{Kind: scanner.FilterLink, Link: f.Link}
	case "fee":
		return scanner.FilterTarget{Kind: scanner.FilterFee, Fee: f.Fee}
	case "its_layer_stave":
		return scanner.FilterTarget{Kind: scanner.FilterItsLayerStave, Fee: f.Fee}
	default:
		return scanner.FilterTarget{Kind: scanner.FilterNone}
	}
}

// DecodeConfig holds the per-run decode/validate options named by
// spec.md §6's "opaque Config capability".
type DecodeConfig struct {
	// MaxTolerateErrors stops processing once this many recoverable
	// errors have accumulated. 0 means unlimited.
	MaxTolerateErrors int `mapstructure:"max_tolerate_errors" validate:"gte=0" yaml:"max_tolerate_errors"`

	// Filter restricts which RDHs (and their payloads) are processed
	Filter FilterConfig `mapstructure:"filter_target" yaml:"filter_target"`

	// SkipPayload emits (rdh, empty, offset) tuples instead of decoding
	// payloads, seeking past them instead
	SkipPayload bool `mapstructure:"skip_payload" yaml:"skip_payload"`

	// MuteErrors suppresses the human-readable error stream; errors are
	// still counted and still reachable via the stats report
	MuteErrors bool `mapstructure:"mute_errors" yaml:"mute_errors"`

	// ErrorCodeFilter restricts printed errors to these [Ennnn] codes.
	// Empty means print everything (subject to MuteErrors).
	ErrorCodeFilter []string `mapstructure:"error_code_filter" yaml:"error_code_filter,omitempty"`

	// OutputMode controls the optional filtered raw-stream output:
	// "none" (default), "stdout", or "file" (requires OutputPath)
	OutputMode string `mapstructure:"output_mode" validate:"omitempty,oneof=none stdout file" yaml:"output_mode"`

	// OutputPath is the destination file when OutputMode == "file"
	OutputPath string `mapstructure:"output_path" yaml:"output_path,omitempty"`

	// ViewMode is decoded from the configuration but no command reads it;
	// the decode-only HBF/word listing (internal/view) runs through the
	// view subcommand
	ViewMode bool `mapstructure:"view_mode" yaml:"view_mode"`

	// AlpideChecksEnabled turns on the per-lane ALPIDE chip-frame decoder
	// and its checks (spec §4.5.5)
	AlpideChecksEnabled bool `mapstructure:"alpide_checks_enabled" yaml:"alpide_checks_enabled"`

	// PixelSensor enables the ITS pixel-sensor-specific stats extensions
	// (layer/stave breakdown, staves-with-errors)
	PixelSensor bool `mapstructure:"pixel_sensor" yaml:"pixel_sensor"`

	// MaxInputSize is a total-input byte limit, 0 meaning unlimited.
	// Supports human-readable sizes: "1GB", "512Mi", etc. No command
	// reads it, so the input size is not capped.
	MaxInputSize bytesize.ByteSize `mapstructure:"max_input_size" yaml:"max_input_size,omitempty"`

	// CustomChecksPath, if set, loads a TOML file of stats.CustomChecks
	// expectations validated against the finalized report.
	CustomChecksPath string `mapstructure:"custom_checks_path" yaml:"custom_checks_path,omitempty"`

	// DispatchKey selects whether the dispatcher routes CDPs by
	// link_id ("link", the default) or fee_id ("fee").
	DispatchKey string `mapstructure:"dispatch_key" validate:"omitempty,oneof=link fee" yaml:"dispatch_key,omitempty"`

	// SeekIndexPath, if set, persists at this directory the seekidx.Index
	// that the view command records RDH offsets into. Empty keeps the
	// index in memory for this run only.
	SeekIndexPath string `mapstructure:"seek_index_path" yaml:"seek_index_path,omitempty"`

	// S3 configures access to "s3://" input sources. Region and
	// credentials otherwise fall back to the default AWS credential
	// chain (environment, shared config, instance role).
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config overrides the default AWS credential chain for s3:// inputs.
// Needed for MinIO/localstack-style custom endpoints, where static
// credentials and a non-AWS BaseEndpoint replace IAM discovery.
type S3Config struct {
	// Region, if unset, defaults to "us-east-1".
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint overrides the AWS endpoint resolver, for S3-compatible
	// stores such as MinIO or localstack. Implies path-style addressing.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey, if both set, use static
	// credentials instead of the default AWS credential chain.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// StatsConfig controls how the finalized Collector report (spec §4.6,
// §6) is emitted.
type StatsConfig struct {
	// StatsOutputMode controls where the serialized stats snapshot goes:
	// "none" (default, report only), "stdout", or "file"
	StatsOutputMode string `mapstructure:"stats_output_mode" validate:"omitempty,oneof=none stdout file" yaml:"stats_output_mode"`

	// StatsOutputFormat selects the serialization format when
	// StatsOutputMode != "none"
	StatsOutputFormat string `mapstructure:"stats_output_format" validate:"omitempty,oneof=json toml" yaml:"stats_output_format"`

	// OutputPath is the destination file when StatsOutputMode == "file"
	OutputPath string `mapstructure:"output_path" yaml:"output_path,omitempty"`

	// CompareInputPath, if set, loads a previously-serialized stats
	// snapshot and diffs it against this run's totals instead of just
	// reporting them (spec §6's "stats input file" comparison mode)
	CompareInputPath string `mapstructure:"compare_input_path" yaml:"compare_input_path,omitempty"`
}

// HistoryConfig configures the optional SQL-backed run-history store
// (internal/statsstore).
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Driver selects the backend: sqlite (default, single-node) or postgres
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite postgres" yaml:"driver"`

	// SQLitePath is the database file path when Driver == "sqlite"
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`

	// PostgresDSN is the connection string when Driver == "postgres"
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FASTPASTA_*)
//  2. Configuration file
//  3. Default values
//
// FASTPASTA_* variables override only keys present in the configuration
// file; when no file is found, the defaults are returned and the
// environment is not consulted.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  fastpasta init\n\n"+
				"Or specify a custom config file:\n"+
				"  fastpasta <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  fastpasta init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use FASTPASTA_ prefix and underscores
	// Example: FASTPASTA_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FASTPASTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use human-readable
// sizes like "1Gi", "500Mi", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fastpasta")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "fastpasta")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
