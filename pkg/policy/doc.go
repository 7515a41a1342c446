// Package policy defines the rule catalogue and policy document model for
// diff governance.
//
// A Policy is a named, versioned, ordered collection of rules. Each Rule
// carries a kind discriminator from a closed catalogue of eight kinds plus
// the kind-specific configuration for its matcher. The catalogue ships with
// a production-tuned default set (DefaultPolicy) that callers may replace or
// merge with their own documents.
//
// Evaluation lives in the policy/engine subpackage; document loading,
// validation, merging and export live in policy/manager.
package policy
