package config

import "time"

// Config is the root configuration structure for saturn. It covers the
// policy source, audit trail storage, rule statistics, git integration
// and telemetry.
type Config struct {
	// Policy contains configuration for the policy source: where
	// policies load from and how changes are picked up.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains configuration for the evaluation audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Stats contains configuration for persistent rule hit statistics.
	Stats StatsConfig `yaml:"stats"`

	// Git contains configuration for reading diffs from a repository.
	Git GitConfig `yaml:"git"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains configuration for the policy source.
type PolicyConfig struct {
	// Path is a policy file or a directory of policy files. Empty means
	// the built-in default catalogue only.
	// Default: ""
	Path string `yaml:"path"`

	// Watch enables automatic reloads when policy files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires after
	// a file change.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the maximum size of a single policy file in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// AuditConfig contains configuration for the evaluation audit trail.
type AuditConfig struct {
	// Enabled controls whether evaluations are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the SQLite database file path for the sqlite
	// backend.
	// Default: "saturn-audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// QueueSize is the async recorder queue depth. Records are dropped
	// when the queue is full rather than blocking evaluation.
	// Default: 1024
	QueueSize int `yaml:"queue_size"`

	// Retention contains configuration for pruning old records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains configuration for audit record retention.
type RetentionConfig struct {
	// Enabled controls whether scheduled pruning runs in watch mode.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Days is the maximum age of records in days. Zero disables
	// age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of records to keep. Zero
	// disables count-based pruning.
	// Default: 0
	MaxRecords int `yaml:"max_records"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// StatsConfig contains configuration for persistent rule statistics.
type StatsConfig struct {
	// Enabled controls whether per-rule hit counters are tracked.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path for the counters.
	// Default: "saturn-stats.db"
	Path string `yaml:"path"`
}

// GitConfig contains configuration for reading diffs from a repository.
type GitConfig struct {
	// BaseRef is the revision diffs are computed against when no
	// explicit revisions are given.
	// Default: "HEAD"
	BaseRef string `yaml:"base_ref"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether watch mode serves metrics.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics endpoint binds to.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
