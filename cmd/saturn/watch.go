package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/retention"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/gitdiff"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/policy/manager"
	"mercator-hq/saturn/pkg/stats"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

var watchFlags struct {
	policy string
	repo   string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch policies and re-evaluate the worktree on change",
	Long: `Run saturn as a long-lived process: watch the policy path for
changes, re-evaluate the repository worktree whenever policies reload,
and keep the audit trail pruned on schedule.

With metrics enabled in the configuration, evaluation counters are
served on a Prometheus endpoint.

Examples:
  # Watch the configured policy path
  saturn watch --config config.yaml

  # Watch an explicit policy directory against a repository
  saturn watch --policy policies/ --repo ~/src/service`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.policy, "policy", "p", "", "policy file or directory to watch")
	watchCmd.Flags().StringVar(&watchFlags.repo, "repo", ".", "git repository to evaluate")
}

// watchSession holds the long-lived state of a watch run.
type watchSession struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.EvaluationMetrics

	recorder   *audit.Recorder
	statsStore *stats.Store

	mu     sync.RWMutex
	merged *policy.Policy
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	policyPath := watchFlags.policy
	if policyPath == "" {
		policyPath = cfg.Policy.Path
	}
	if policyPath == "" {
		return cli.NewCommandError("watch", fmt.Errorf("no policy path to watch, set --policy or policy.path"))
	}
	cfg.Policy.Path = policyPath

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := &watchSession{cfg: cfg, logger: logger}

	if session.merged, err = loadPolicies(cfg, nil, false); err != nil {
		return cli.NewCommandError("watch", err)
	}
	logger.Info("policies loaded", "rules", session.merged.RuleCount())

	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		session.metrics = metrics.NewEvaluationMetrics(registry)
		startMetricsServer(ctx, cfg, registry, logger)
	}

	if cfg.Audit.Enabled {
		store, err := newAuditStorage(cfg, logger)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer store.Close()

		session.recorder = audit.NewRecorder(store, auditRecorderConfig(cfg), logger)
		defer session.recorder.Close()

		if cfg.Audit.Retention.Enabled {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Audit.Retention.Days,
				MaxRecords:    int64(cfg.Audit.Retention.MaxRecords),
				PruneSchedule: cfg.Audit.Retention.Schedule,
			}, logger)
			if err := pruner.Scheduler().Start(ctx); err != nil {
				return cli.NewCommandError("watch", err)
			}
		}
	}

	if cfg.Stats.Enabled {
		store, err := stats.Open(cfg.Stats.Path, logger)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer store.Close()
		session.statsStore = store
	}

	session.evaluate(ctx)

	watcher, err := manager.NewWatcher(&manager.WatcherConfig{
		Path:             policyPath,
		DebounceInterval: cfg.Policy.DebounceInterval,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	err = watcher.Watch(ctx, func() error {
		merged, err := loadPolicies(cfg, nil, false)
		if err != nil {
			return err
		}

		session.mu.Lock()
		session.merged = merged
		session.mu.Unlock()

		logger.Info("policies reloaded", "rules", merged.RuleCount())
		session.evaluate(ctx)
		return nil
	})
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// evaluate runs one worktree evaluation with the current policy set.
// Failures are logged rather than fatal so a broken repository state
// does not take the watcher down.
func (s *watchSession) evaluate(ctx context.Context) {
	repo, err := gitdiff.Open(watchFlags.repo, s.logger)
	if err != nil {
		s.logger.Warn("repository unavailable, skipping evaluation", "error", err)
		return
	}

	parseStart := time.Now()
	text, err := repo.DiffWorktree(ctx, s.cfg.Git.BaseRef)
	if err != nil {
		s.logger.Warn("worktree diff failed, skipping evaluation", "error", err)
		return
	}

	files := diff.Parse(text)
	if s.metrics != nil {
		s.metrics.RecordParse(time.Since(parseStart))
	}

	s.mu.RLock()
	merged := s.merged
	s.mu.RUnlock()

	evalStart := time.Now()
	result := engine.NewEvaluator(s.logger).Evaluate(files, merged.Rules)
	summary := diff.Summarize(files)

	s.logger.Info("worktree evaluated",
		"decision", result.Decision,
		"files", summary.TotalFiles,
		"violations", len(result.Violations),
	)

	if s.metrics != nil {
		s.metrics.RecordEvaluation(string(result.Decision), summary.TotalFiles, time.Since(evalStart))
		for _, v := range result.Violations {
			s.metrics.RecordViolation(v.RuleID, string(v.Severity))
		}
	}

	if s.recorder != nil {
		s.recorder.Record(audit.NewRecord(merged, summary, &result))
	}

	if s.statsStore != nil {
		if err := s.statsStore.RecordEvaluation(ctx, merged.Rules, result.Violations); err != nil {
			s.logger.Error("stats recording failed", "error", err)
		}
	}
}

// auditRecorderConfig maps the audit configuration onto the recorder.
func auditRecorderConfig(cfg *config.Config) *audit.RecorderConfig {
	recorderCfg := audit.DefaultRecorderConfig()
	if cfg.Audit.QueueSize > 0 {
		recorderCfg.QueueSize = cfg.Audit.QueueSize
	}
	return recorderCfg
}

// startMetricsServer serves the registry on the configured address and
// shuts down when the context is cancelled.
func startMetricsServer(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, metrics.Handler(registry))

	server := &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics endpoint listening",
			"address", cfg.Telemetry.Metrics.ListenAddress,
			"path", cfg.Telemetry.Metrics.Path,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}()
}
