package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/policy/manager"
)

var lintFlags struct {
	file string
	dir  string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate policy files for syntax and structural errors.

The lint command parses policy files and validates them:
  - YAML syntax validation
  - Required policy metadata (id, name, version)
  - Per-rule validation (ids, kinds, severities)

Examples:
  # Lint single file
  saturn lint --file policies.yaml

  # Lint directory
  saturn lint --dir policies/

  # JSON output for CI/CD
  saturn lint --file policies.yaml --output json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
}

// LintResult is the validation outcome for a single policy file.
type LintResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintPolicyFile(file))
	}

	if outputFormat == "json" {
		if err := formatter().FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printLintResults(results)
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}

func lintPolicyFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	loader := manager.NewLoader(nil)
	p, err := loader.LoadFromFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, lintErrorMessages(err)...)
		return result
	}

	for _, issue := range manager.Validate(p) {
		result.Valid = false
		result.Errors = append(result.Errors, issue.Error())
	}
	return result
}

// lintErrorMessages flattens a load failure into printable messages.
func lintErrorMessages(err error) []string {
	var list *manager.ErrorList
	if errors.As(err, &list) {
		messages := make([]string, 0, len(list.Errors))
		for _, e := range list.Errors {
			messages = append(messages, e.Error())
		}
		return messages
	}
	return []string{err.Error()}
}

func printLintResults(results []LintResult) {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if result.Valid {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All rules have valid kinds and severities")
		}

		for _, msg := range result.Errors {
			fmt.Printf("✗ Error: %s\n", msg)
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s) in %d file(s)\n", totalErrors, len(results))
}
