package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate checks a Config against its struct tags plus a handful of
// cross-field business rules the tags can't express (spec §6's "opaque
// Config capability" still has to be internally consistent).
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("config validation: telemetry.endpoint is required when telemetry is enabled")
	}

	if cfg.Decode.OutputMode == "file" && cfg.Decode.OutputPath == "" {
		return fmt.Errorf("config validation: decode.output_path is required when decode.output_mode is \"file\"")
	}

	if cfg.Stats.StatsOutputMode == "file" && cfg.Stats.OutputPath == "" {
		return fmt.Errorf("config validation: stats.output_path is required when stats.stats_output_mode is \"file\"")
	}

	if cfg.Decode.Filter.Kind == "link" && cfg.Decode.Filter.Fee != 0 {
		return fmt.Errorf("config validation: decode.filter_target.fee must be unset when filter kind is \"link\"")
	}

	if cfg.History.Enabled {
		switch cfg.History.Driver {
		case "sqlite":
			if cfg.History.SQLitePath == "" {
				return fmt.Errorf("config validation: history.sqlite_path is required when history is enabled with the sqlite driver")
			}
		case "postgres":
			if cfg.History.PostgresDSN == "" {
				return fmt.Errorf("config validation: history.postgres_dsn is required when history is enabled with the postgres driver")
			}
		}
	}

	return nil
}
