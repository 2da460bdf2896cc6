package config

import (
	"testing"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected default telemetry endpoint, got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("Expected default profile types to be set")
	}
}

func TestApplyDefaults_Decode(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Decode.Filter.Kind != "none" {
		t.Errorf("Expected default filter kind 'none', got %q", cfg.Decode.Filter.Kind)
	}
	if cfg.Decode.OutputMode != "none" {
		t.Errorf("Expected default decode output mode 'none', got %q", cfg.Decode.OutputMode)
	}
	if cfg.Decode.DispatchKey != "link" {
		t.Errorf("Expected default dispatch key 'link', got %q", cfg.Decode.DispatchKey)
	}
	if cfg.Decode.S3.Region != "us-east-1" {
		t.Errorf("Expected default S3 region 'us-east-1', got %q", cfg.Decode.S3.Region)
	}
}

func TestApplyDefaults_Stats(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Stats.StatsOutputMode != "none" {
		t.Errorf("Expected default stats output mode 'none', got %q", cfg.Stats.StatsOutputMode)
	}
	if cfg.Stats.StatsOutputFormat != "json" {
		t.Errorf("Expected default stats output format 'json', got %q", cfg.Stats.StatsOutputFormat)
	}
}

func TestApplyDefaults_History(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.History.Driver != "sqlite" {
		t.Errorf("Expected default history driver 'sqlite', got %q", cfg.History.Driver)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/fastpasta.log",
		},
		Decode: DecodeConfig{
			MaxTolerateErrors: 10,
			Filter:            FilterConfig{Kind: "link", Link: 3},
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/fastpasta.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Decode.MaxTolerateErrors != 10 {
		t.Errorf("Expected explicit max_tolerate_errors to be preserved, got %d", cfg.Decode.MaxTolerateErrors)
	}
	if cfg.Decode.Filter.Kind != "link" || cfg.Decode.Filter.Link != 3 {
		t.Errorf("Expected explicit filter target to be preserved, got %+v", cfg.Decode.Filter)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Decode.Filter.Kind == "" {
		t.Error("Default config missing filter kind")
	}
	if cfg.Stats.StatsOutputFormat == "" {
		t.Error("Default config missing stats output format")
	}
}
