package config

import (
	"fmt"
	"strings"
)

// Validate checks a configuration for inconsistent values. It assumes
// defaults have already been applied.
func Validate(cfg *Config) error {
	if cfg.Policy.DebounceInterval < 0 {
		return fmt.Errorf("policy.debounce_interval must not be negative")
	}
	if cfg.Policy.MaxFileSize <= 0 {
		return fmt.Errorf("policy.max_file_size must be positive")
	}

	switch cfg.Audit.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("audit.backend must be %q or %q, got %q", "memory", "sqlite", cfg.Audit.Backend)
	}
	if cfg.Audit.Backend == "sqlite" && cfg.Audit.SQLitePath == "" {
		return fmt.Errorf("audit.sqlite_path is required for the sqlite backend")
	}
	if cfg.Audit.QueueSize <= 0 {
		return fmt.Errorf("audit.queue_size must be positive")
	}
	if cfg.Audit.Retention.Days < 0 {
		return fmt.Errorf("audit.retention.days must not be negative")
	}
	if cfg.Audit.Retention.MaxRecords < 0 {
		return fmt.Errorf("audit.retention.max_records must not be negative")
	}

	if cfg.Stats.Enabled && cfg.Stats.Path == "" {
		return fmt.Errorf("stats.path is required when stats are enabled")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error, got %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("telemetry.logging.format must be %q or %q, got %q", "text", "json", cfg.Telemetry.Logging.Format)
	}

	if cfg.Telemetry.Metrics.Enabled {
		if cfg.Telemetry.Metrics.ListenAddress == "" {
			return fmt.Errorf("telemetry.metrics.listen_address is required when metrics are enabled")
		}
		if !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
			return fmt.Errorf("telemetry.metrics.path must start with /, got %q", cfg.Telemetry.Metrics.Path)
		}
	}

	return nil
}
