// Saturn is a diff governance tool: it parses unified diffs, applies a
// typed rule catalogue and reduces the matches to an allow/warn/block
// decision.
//
// Usage:
//
//	# Evaluate a diff from stdin against the built-in catalogue
//	git diff | saturn check
//
//	# Evaluate two revisions with a custom policy
//	saturn check --from HEAD~1 --to HEAD --policy policies/
//
//	# Summarize a change set without evaluating it
//	git diff | saturn summary
//
//	# Validate policy files
//	saturn lint --file policies.yaml
//
//	# Inspect past decisions
//	saturn history --decision block --limit 20
//
//	# Keep policies hot-reloaded and serve metrics
//	saturn watch --config config.yaml
//
// For complete documentation, see: https://github.com/mercator-hq/saturn
package main

func main() {
	Execute()
}
