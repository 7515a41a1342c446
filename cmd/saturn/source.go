package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/gitdiff"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/policy/manager"
)

// diffSource holds the flags selecting where diff text comes from:
// an explicit file, a git revision range, the worktree, or stdin.
type diffSource struct {
	file     string
	repo     string
	from     string
	to       string
	worktree bool
}

// addDiffSourceFlags registers the shared diff source flags on cmd.
func addDiffSourceFlags(cmd *cobra.Command, src *diffSource) {
	cmd.Flags().StringVarP(&src.file, "file", "f", "", "diff file to read (default: stdin)")
	cmd.Flags().StringVar(&src.repo, "repo", ".", "git repository path")
	cmd.Flags().StringVar(&src.from, "from", "", "base revision for a git diff")
	cmd.Flags().StringVar(&src.to, "to", "HEAD", "target revision for a git diff")
	cmd.Flags().BoolVar(&src.worktree, "worktree", false, "diff the worktree against the base revision")
}

// resolve produces the diff text for the selected source.
func (src *diffSource) resolve(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	switch {
	case src.worktree:
		repo, err := gitdiff.Open(src.repo, logger)
		if err != nil {
			return "", err
		}
		base := src.from
		if base == "" {
			base = cfg.Git.BaseRef
		}
		return repo.DiffWorktree(ctx, base)

	case src.from != "":
		repo, err := gitdiff.Open(src.repo, logger)
		if err != nil {
			return "", err
		}
		return repo.DiffRevisions(ctx, src.from, src.to)

	case src.file != "":
		data, err := os.ReadFile(src.file)
		if err != nil {
			return "", fmt.Errorf("failed to read diff file: %w", err)
		}
		return string(data), nil

	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read diff from stdin: %w", err)
		}
		return string(data), nil
	}
}

// loadPolicies loads the effective policy: the built-in catalogue
// (unless suppressed), the configured policy path, then any explicitly
// given paths, merged in that order so later rules override earlier
// ones by id.
func loadPolicies(cfg *config.Config, paths []string, noDefault bool) (*policy.Policy, error) {
	loader := manager.NewLoader(&manager.LoaderConfig{
		MaxFileSize:       cfg.Policy.MaxFileSize,
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
	})

	var docs []*policy.Policy
	if !noDefault {
		docs = append(docs, policy.DefaultPolicy())
	}

	if cfg.Policy.Path != "" {
		paths = append([]string{cfg.Policy.Path}, paths...)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat policy path %q: %w", path, err)
		}

		if info.IsDir() {
			loaded, err := loader.LoadFromDirectory(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, loaded...)
			continue
		}

		p, err := loader.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, p)
	}

	merged := manager.Merge(docs...)

	if issues := manager.Validate(merged); len(issues) > 0 {
		for _, issue := range issues {
			slog.Warn("policy validation issue", "rule_id", issue.RuleID, "message", issue.Message)
		}
	}

	return merged, nil
}
