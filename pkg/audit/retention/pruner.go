package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain records.
	// 0 disables age-based pruning.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep.
	// 0 disables count-based pruning.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning,
	// e.g. "0 3 * * *" for daily at 3 AM. Empty disables scheduling.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		MaxRecords:    0,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention limits on audit records.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "audit.retention"),
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then records
// beyond the count limit. Both phases can apply together. Returns the
// total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += deleted
		p.logger.Info("pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.storage.DeleteOldest(ctx, p.config.MaxRecords)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += deleted
		p.logger.Info("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	return total, nil
}

// Scheduler returns the scheduler bound to this pruner.
func (p *Pruner) Scheduler() *Scheduler {
	return p.scheduler
}
