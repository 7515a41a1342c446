package engine

import (
	"log/slog"

	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
)

// Evaluator applies policy rules to parsed diffs.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a new evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		logger: logger.With("component", "policy.engine"),
	}
}

// Evaluate is a convenience wrapper using the default logger.
func Evaluate(files []diff.File, rules []policy.Rule) policy.Result {
	return NewEvaluator(nil).Evaluate(files, rules)
}

// Evaluate applies every enabled rule to every file and reduces the
// violations to a single decision. It never fails for well-formed inputs;
// per-rule pattern-compile failures are isolated and the affected rule
// simply contributes no violations.
func (e *Evaluator) Evaluate(files []diff.File, rules []policy.Rule) policy.Result {
	// Compile each enabled rule once. Rules that fail to compile, and
	// rules of unknown kinds, drop out here without affecting the rest.
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}

		m, err := compileRule(rule)
		if err != nil {
			e.logger.Warn("skipping rule with invalid pattern",
				"rule_id", rule.ID,
				"kind", rule.Kind,
				"error", err,
			)
			continue
		}
		if m == nil {
			e.logger.Debug("skipping rule of unknown kind",
				"rule_id", rule.ID,
				"kind", rule.Kind,
			)
			continue
		}

		compiled = append(compiled, compiledRule{rule: rule, matcher: m})
	}

	result := policy.Result{Decision: policy.SeverityAllow}

	// File-major, rule-minor: the violation order is an observable
	// contract for deterministic reporting.
	for i := range files {
		file := &files[i]
		for _, cr := range compiled {
			matched, message := cr.matcher.match(file)
			if !matched {
				continue
			}

			result.Violations = append(result.Violations, policy.Violation{
				RuleID:   cr.rule.ID,
				FilePath: file.Path,
				Severity: cr.rule.Severity,
				Message:  message,
			})

			if cr.rule.Severity.Exceeds(result.Decision) {
				result.Decision = cr.rule.Severity
			}
		}
	}

	return result
}

// compiledRule pairs a rule with its compiled matcher.
type compiledRule struct {
	rule    policy.Rule
	matcher matcher
}
