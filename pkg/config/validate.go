package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError collects all configuration problems found during
// validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Errors, "; "))
}

// Validate checks the configuration for inconsistencies. All problems
// are reported at once.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address is required")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.IdleTimeout < 0 {
		problems = append(problems, "server timeouts must not be negative")
	}

	switch cfg.Evidence.Backend {
	case "sqlite":
		if cfg.Evidence.SQLite.Path == "" {
			problems = append(problems, "evidence.sqlite.path is required for the sqlite backend")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("evidence.backend must be %q or %q, got %q", "sqlite", "memory", cfg.Evidence.Backend))
	}
	if cfg.Evidence.Retention.Days < 0 {
		problems = append(problems, "evidence.retention.days must not be negative")
	}
	if cfg.Evidence.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Evidence.Retention.Schedule); err != nil {
			problems = append(problems, fmt.Sprintf("evidence.retention.schedule is not a valid cron expression: %v", err))
		}
	}
	if cfg.Evidence.AsyncBuffer < 0 {
		problems = append(problems, "evidence.async_buffer must not be negative")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format must be json or text, got %q", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		problems = append(problems, "telemetry.metrics.path must start with /")
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}
