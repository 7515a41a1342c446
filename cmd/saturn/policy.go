package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/policy/manager"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and manage policy documents",
}

var policyShowFlags struct {
	policies  []string
	noDefault bool
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective merged policy",
	Long: `Print the policy that check would evaluate with: the built-in
catalogue, the configured policy path and any --policy arguments,
merged in order.

Examples:
  # Show the built-in catalogue
  saturn policy show

  # Show the effective policy with overrides applied
  saturn policy show --policy team.yaml --policy overrides/`,
	RunE: runPolicyShow,
}

var policyInitFlags struct {
	file string
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in catalogue as a starting policy file",
	Long: `Write the built-in rule catalogue as YAML, ready to edit.

Examples:
  # Print to stdout
  saturn policy init

  # Write a policy file
  saturn policy init --file policies.yaml`,
	RunE: runPolicyInit,
}

var policyExportFlags struct {
	policies  []string
	noDefault bool
	file      string
}

var policyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the effective merged policy to a file",
	Long: `Export the effective policy as a single YAML document: the built-in
catalogue, the configured policy path and any --policy arguments,
merged in order.

Examples:
  # Freeze the effective policy for CI
  saturn policy export --policy overrides/ --file effective.yaml`,
	RunE: runPolicyExport,
}

var policyMergeFlags struct {
	file string
}

var policyMergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Merge policy files into one document",
	Long: `Merge two or more policy files into a single document. Later files
override earlier rules with the same id; document metadata comes from
the first file.

Examples:
  saturn policy merge base.yaml team.yaml > merged.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPolicyMerge,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyExportCmd)
	policyCmd.AddCommand(policyMergeCmd)

	policyShowCmd.Flags().StringArrayVarP(&policyShowFlags.policies, "policy", "p", nil, "policy file or directory (repeatable)")
	policyShowCmd.Flags().BoolVar(&policyShowFlags.noDefault, "no-default-policy", false, "do not include the built-in catalogue")

	policyInitCmd.Flags().StringVarP(&policyInitFlags.file, "file", "f", "", "destination file (default: stdout)")

	policyExportCmd.Flags().StringArrayVarP(&policyExportFlags.policies, "policy", "p", nil, "policy file or directory (repeatable)")
	policyExportCmd.Flags().BoolVar(&policyExportFlags.noDefault, "no-default-policy", false, "do not include the built-in catalogue")
	policyExportCmd.Flags().StringVarP(&policyExportFlags.file, "file", "f", "", "destination file (default: stdout)")
	policyMergeCmd.Flags().StringVarP(&policyMergeFlags.file, "file", "f", "", "destination file (default: stdout)")
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("policy show", err)
	}
	if _, err := setupLogger(cfg); err != nil {
		return cli.NewCommandError("policy show", err)
	}

	merged, err := loadPolicies(cfg, policyShowFlags.policies, policyShowFlags.noDefault)
	if err != nil {
		return cli.NewCommandError("policy show", err)
	}

	if outputFormat == "json" {
		return formatter().FormatTo(os.Stdout, merged)
	}
	return writePolicy(merged, "")
}

func runPolicyInit(cmd *cobra.Command, args []string) error {
	return writePolicy(policy.DefaultPolicy(), policyInitFlags.file)
}

func runPolicyExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("policy export", err)
	}
	if _, err := setupLogger(cfg); err != nil {
		return cli.NewCommandError("policy export", err)
	}

	merged, err := loadPolicies(cfg, policyExportFlags.policies, policyExportFlags.noDefault)
	if err != nil {
		return cli.NewCommandError("policy export", err)
	}

	return writePolicy(merged, policyExportFlags.file)
}

func runPolicyMerge(cmd *cobra.Command, args []string) error {
	loader := manager.NewLoader(nil)

	docs := make([]*policy.Policy, 0, len(args))
	for _, path := range args {
		p, err := loader.LoadFromFile(path)
		if err != nil {
			return cli.NewCommandError("policy merge", err)
		}
		docs = append(docs, p)
	}

	return writePolicy(manager.Merge(docs...), policyMergeFlags.file)
}

// writePolicy exports a policy as YAML to the given file, or stdout
// when the path is empty.
func writePolicy(p *policy.Policy, path string) error {
	data, err := manager.Export(p)
	if err != nil {
		return err
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}
	return nil
}
