package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file, applies defaults, and
// validates the result. An empty path yields the default
// configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and then
// applies MERIDIAN_* environment variable overrides. Environment
// variables always take precedence over file values.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies MERIDIAN_SECTION_FIELD environment
// variables to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("MERIDIAN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("MERIDIAN_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Policy overrides
	if val := os.Getenv("MERIDIAN_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}
	if val := os.Getenv("MERIDIAN_POLICY_ID"); val != "" {
		cfg.Policy.PolicyID = val
	}
	if val := os.Getenv("MERIDIAN_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}

	// Evidence overrides
	if val := os.Getenv("MERIDIAN_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("MERIDIAN_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("MERIDIAN_EVIDENCE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evidence.Retention.Days = i
		}
	}
	if val := os.Getenv("MERIDIAN_EVIDENCE_RETENTION_SCHEDULE"); val != "" {
		cfg.Evidence.Retention.Schedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
