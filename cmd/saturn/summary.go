package main

import (
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/diff"
)

var summaryFlags struct {
	source diffSource
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a diff without evaluating it",
	Long: `Parse a unified diff and print a per-file change summary in the
style of git diff --stat. No policies are applied.

Examples:
  # Summarize staged changes
  git diff --cached | saturn summary

  # Summarize two revisions as JSON
  saturn summary --from main --to HEAD --output json`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	addDiffSourceFlags(summaryCmd, &summaryFlags.source)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("summary", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return cli.NewCommandError("summary", err)
	}

	text, err := summaryFlags.source.resolve(cmd.Context(), cfg, logger)
	if err != nil {
		return cli.NewCommandError("summary", err)
	}

	summary := diff.Summarize(diff.Parse(text))
	return formatter().FormatTo(os.Stdout, summary)
}
