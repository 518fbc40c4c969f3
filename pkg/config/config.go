package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Policy    PolicyConfig    `yaml:"policy"`
	Evidence  EvidenceConfig  `yaml:"evidence"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind, e.g. ":8080".
	ListenAddress string `yaml:"listen_address"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PolicyConfig configures policy loading.
type PolicyConfig struct {
	// Path is a policy YAML file or a directory of them. Empty means
	// use the built-in default policy.
	Path string `yaml:"path"`

	// PolicyID selects the active policy when the source provides
	// several. Empty means the first one.
	PolicyID string `yaml:"policy_id"`

	// Watch reloads policies when files under Path change.
	Watch bool `yaml:"watch"`
}

// EvidenceConfig configures the decision audit trail.
type EvidenceConfig struct {
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the recorder's channel buffer size.
	AsyncBuffer int `yaml:"async_buffer"`

	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the SQLite evidence backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RetentionConfig configures decision record retention.
type RetentionConfig struct {
	// Days is how long to keep records; 0 keeps them forever.
	Days int `yaml:"days"`

	// Schedule is a cron expression for pruning runs.
	Schedule string `yaml:"schedule"`

	// ArchiveBeforeDelete exports records to JSON before pruning.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the archive directory.
	ArchivePath string `yaml:"archive_path"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log entries.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is where metrics are served, typically "/metrics".
	Path string `yaml:"path"`
}
