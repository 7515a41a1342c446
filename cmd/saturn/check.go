package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/audit/storage"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/stats"
)

var checkFlags struct {
	source    diffSource
	policies  []string
	noDefault bool
	strict    bool
	audit     bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a diff against governance policies",
	Long: `Evaluate a unified diff against governance policies and print the
allow/warn/block decision with every rule violation.

The diff is read from stdin by default. Exit codes report the decision:
0 for allow (and for warn without --strict), 1 for warn with --strict,
2 for block, 3 for errors.

Examples:
  # Evaluate staged changes against the built-in catalogue
  git diff --cached | saturn check

  # Evaluate two revisions with custom policies
  saturn check --from main --to HEAD --policy policies/

  # Evaluate the worktree and fail CI on warnings
  saturn check --worktree --strict

  # Record the decision in the audit trail
  saturn check --file change.diff --audit`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	addDiffSourceFlags(checkCmd, &checkFlags.source)
	checkCmd.Flags().StringArrayVarP(&checkFlags.policies, "policy", "p", nil, "policy file or directory (repeatable)")
	checkCmd.Flags().BoolVar(&checkFlags.noDefault, "no-default-policy", false, "do not include the built-in catalogue")
	checkCmd.Flags().BoolVar(&checkFlags.strict, "strict", false, "exit non-zero on warn decisions")
	checkCmd.Flags().BoolVar(&checkFlags.audit, "audit", false, "record the evaluation in the audit trail")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	text, err := checkFlags.source.resolve(cmd.Context(), cfg, logger)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	merged, err := loadPolicies(cfg, checkFlags.policies, checkFlags.noDefault)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	files := diff.Parse(text)
	summary := diff.Summarize(files)
	result := engine.NewEvaluator(logger).Evaluate(files, merged.Rules)

	logger.Info("evaluation complete",
		"decision", result.Decision,
		"files", summary.TotalFiles,
		"violations", len(result.Violations),
	)

	if err := formatter().FormatTo(os.Stdout, &result); err != nil {
		return cli.NewCommandError("check", err)
	}

	if cfg.Audit.Enabled || checkFlags.audit {
		if err := recordAudit(cfg, logger, merged, summary, &result); err != nil {
			logger.Error("audit recording failed", "error", err)
		}
	}

	if cfg.Stats.Enabled {
		if err := recordStats(cmd, cfg, logger, merged, &result); err != nil {
			logger.Error("stats recording failed", "error", err)
		}
	}

	exitCode = decisionExitCode(result.Decision, checkFlags.strict)
	return nil
}

// decisionExitCode maps a decision to the process exit code.
func decisionExitCode(decision policy.Severity, strict bool) int {
	switch decision {
	case policy.SeverityBlock:
		return 2
	case policy.SeverityWarn:
		if strict {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// newAuditStorage builds the configured audit storage backend.
func newAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		sqliteCfg := storage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Audit.SQLitePath
		return storage.NewSQLiteStorage(sqliteCfg, logger)
	}
}

func recordAudit(cfg *config.Config, logger *slog.Logger, merged *policy.Policy, summary diff.Summary, result *policy.Result) error {
	store, err := newAuditStorage(cfg, logger)
	if err != nil {
		return err
	}

	recorder := audit.NewRecorder(store, auditRecorderConfig(cfg), logger)
	recorder.Record(audit.NewRecord(merged, summary, result))

	if err := recorder.Close(); err != nil {
		return err
	}
	return store.Close()
}

func recordStats(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, merged *policy.Policy, result *policy.Result) error {
	store, err := stats.Open(cfg.Stats.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordEvaluation(cmd.Context(), merged.Rules, result.Violations)
}
