package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pruner on a cron schedule. It is used by watch
// mode, which stays up long enough for schedules to matter.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: pruner.logger,
	}
}

// Start begins scheduled pruning using the pruner's cron expression.
// An empty schedule is a no-op. The scheduler stops itself when the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedule := s.pruner.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		deleted, err := s.pruner.Prune(ctx)
		if err != nil {
			s.logger.Error("scheduled pruning failed", "error", err)
			return
		}
		s.logger.Info("scheduled pruning completed", "deleted_count", deleted)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", schedule,
		"retention_days", s.pruner.config.RetentionDays,
		"max_records", s.pruner.config.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}
