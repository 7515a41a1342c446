package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/stats"
)

var historyFlags struct {
	decision string
	policyID string
	since    time.Duration
	limit    int
	offset   int
	count    bool
	stats    bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past evaluation decisions",
	Long: `Query the audit trail of past evaluations.

Requires the sqlite audit backend; the memory backend does not survive
process exit.

Examples:
  # The last 20 decisions
  saturn history

  # Blocked changes from the last week
  saturn history --decision block --since 168h

  # How many evaluations warned
  saturn history --decision warn --count

  # Per-rule hit counters instead of records
  saturn history --stats`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.decision, "decision", "", "filter by decision: allow, warn, block")
	historyCmd.Flags().StringVar(&historyFlags.policyID, "policy-id", "", "filter by policy id")
	historyCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only records newer than this age (e.g. 24h)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of records")
	historyCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "number of records to skip")
	historyCmd.Flags().BoolVar(&historyFlags.count, "count", false, "print the matching record count only")
	historyCmd.Flags().BoolVar(&historyFlags.stats, "stats", false, "print per-rule hit counters instead of records")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if historyFlags.stats {
		store, err := stats.Open(cfg.Stats.Path, logger)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		defer store.Close()

		all, err := store.All(cmd.Context())
		if err != nil {
			return cli.NewCommandError("history", err)
		}

		if outputFormat == "json" {
			return formatter().FormatTo(os.Stdout, all)
		}
		printRuleStats(all)
		return nil
	}

	if cfg.Audit.Backend == "memory" {
		return cli.NewCommandError("history", fmt.Errorf("the memory audit backend keeps no history, configure the sqlite backend"))
	}

	store, err := newAuditStorage(cfg, logger)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	query := &audit.Query{
		Decision: historyFlags.decision,
		PolicyID: historyFlags.policyID,
		Limit:    historyFlags.limit,
		Offset:   historyFlags.offset,
	}
	if historyFlags.since > 0 {
		query.Since = time.Now().Add(-historyFlags.since)
	}

	if historyFlags.count {
		count, err := store.Count(cmd.Context(), query)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		fmt.Println(count)
		return nil
	}

	records, err := store.List(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if outputFormat == "json" {
		return formatter().FormatTo(os.Stdout, records)
	}
	printRecords(records)
	return nil
}

func printRecords(records []*audit.Record) {
	if len(records) == 0 {
		fmt.Println("no records")
		return
	}

	for _, r := range records {
		fmt.Printf("%s  %-5s  %s@%s  %d file(s) +%d -%d  %d violation(s)  %s\n",
			r.EvaluatedAt.Format(time.RFC3339),
			r.Decision,
			r.PolicyID,
			r.PolicyVersion,
			r.TotalFiles,
			r.AddedLines,
			r.RemovedLines,
			len(r.Violations),
			r.ID,
		)
	}
}

func printRuleStats(all []*stats.RuleStats) {
	if len(all) == 0 {
		fmt.Println("no rule statistics")
		return
	}

	for _, s := range all {
		line := fmt.Sprintf("%-24s  %d hit(s) over %d evaluation(s)", s.RuleID, s.Hits, s.Evaluations)
		if !s.LastHit.IsZero() {
			line += fmt.Sprintf("  last %s", s.LastHit.Format(time.RFC3339))
		}
		fmt.Println(line)
	}
}
