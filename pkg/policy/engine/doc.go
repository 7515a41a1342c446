// Package engine evaluates parsed diffs against policy rules.
//
// Evaluation is a cross product: every enabled rule is applied to every
// file, dispatched by rule kind to a kind-specific matcher. The violation
// list preserves file-major, rule-minor order, matching the caller-supplied
// ordering of both inputs; this ordering is an observable contract for
// deterministic reporting. The aggregate decision is the maximum severity
// over all violations and is order-independent.
//
// The engine is total: a rule whose pattern fails to compile contributes
// zero violations, unknown rule kinds are no-ops, and no failure in one
// rule affects any other.
package engine
