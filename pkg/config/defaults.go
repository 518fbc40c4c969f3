package config

import "time"

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = "sqlite"
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = "data/decisions.db"
	}
	if cfg.Evidence.AsyncBuffer == 0 {
		cfg.Evidence.AsyncBuffer = 1000
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = 90
	}
	if cfg.Evidence.Retention.Schedule == "" {
		cfg.Evidence.Retention.Schedule = "0 3 * * *"
	}
	if cfg.Evidence.Retention.ArchivePath == "" {
		cfg.Evidence.Retention.ArchivePath = "data/archives/"
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}

// Default returns a fully-defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Evidence.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	return cfg
}
