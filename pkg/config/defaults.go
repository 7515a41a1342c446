package config

import "time"

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Explicit
// zero values that are meaningful (disabled booleans, zero retention
// limits) are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.Policy.MaxFileSize == 0 {
		cfg.Policy.MaxFileSize = 10 * 1024 * 1024
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = "saturn-audit.db"
	}
	if cfg.Audit.QueueSize == 0 {
		cfg.Audit.QueueSize = 1024
	}
	if cfg.Audit.Retention.Days == 0 && cfg.Audit.Retention.MaxRecords == 0 {
		cfg.Audit.Retention.Days = 90
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = "0 3 * * *"
	}

	if cfg.Stats.Path == "" {
		cfg.Stats.Path = "saturn-stats.db"
	}

	if cfg.Git.BaseRef == "" {
		cfg.Git.BaseRef = "HEAD"
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "text"
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = "127.0.0.1:9464"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}
