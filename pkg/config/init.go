package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented YAML scaffold written by InitConfig.
// Its values mirror GetDefaultConfig's, so a freshly generated file
// loads to the same Config a missing file would have produced, except
// that metrics.port and status_api.port are written as 9090 and 9091
// where the defaults leave them 0 while those servers are disabled.
const configTemplate = `# fastpasta Configuration File
#
# This file configures the stream decoder/validator. Environment variables
# (FASTPASTA_*) override the values below, which in turn override the
# built-in defaults.

logging:
  level: "INFO"
  format: "text"
  output: "stdout"

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: false
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

metrics:
  enabled: false
  port: 9090

status_api:
  enabled: false
  port: 9091

decode:
  max_tolerate_errors: 0
  filter_target:
    kind: "none"
  skip_payload: false
  mute_errors: false
  output_mode: "none"
  view_mode: false
  alpide_checks_enabled: false
  pixel_sensor: false

stats:
  stats_output_mode: "none"
  stats_output_format: "json"

history:
  enabled: false
  driver: "sqlite"
`

// InitConfig writes a default configuration file to the default config
// location ($XDG_CONFIG_HOME/fastpasta/config.yaml, or ~/.config/fastpasta
// otherwise). Returns the path written to, or an error if the file
// already exists and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to an explicit
// path, creating parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
