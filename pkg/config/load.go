package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path, applies defaults and validates the result. Environment
// variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention SATURN_SECTION_FIELD (e.g. SATURN_POLICY_PATH) and always
// take precedence over the file.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies SATURN_SECTION_FIELD environment variables
// to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	if val := os.Getenv("SATURN_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}
	if val := os.Getenv("SATURN_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}
	if val := os.Getenv("SATURN_POLICY_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policy.DebounceInterval = d
		}
	}
	if val := os.Getenv("SATURN_POLICY_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Policy.MaxFileSize = i
		}
	}

	// Audit overrides
	if val := os.Getenv("SATURN_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("SATURN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("SATURN_AUDIT_QUEUE_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.QueueSize = i
		}
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Retention.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("SATURN_AUDIT_RETENTION_SCHEDULE"); val != "" {
		cfg.Audit.Retention.Schedule = val
	}

	// Stats overrides
	if val := os.Getenv("SATURN_STATS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Stats.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_STATS_PATH"); val != "" {
		cfg.Stats.Path = val
	}

	// Git overrides
	if val := os.Getenv("SATURN_GIT_BASE_REF"); val != "" {
		cfg.Git.BaseRef = val
	}

	// Telemetry overrides
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
