package policy

import "time"

// Severity grades a rule match. It is used both per rule and as the
// aggregate decision over an entire evaluated change set.
type Severity string

const (
	// SeverityAllow explicitly allows the change.
	SeverityAllow Severity = "allow"

	// SeverityWarn flags the change without blocking it.
	SeverityWarn Severity = "warn"

	// SeverityBlock blocks the change.
	SeverityBlock Severity = "block"
)

// rank orders severities for the decision reduction. Higher wins.
func (s Severity) rank() int {
	switch s {
	case SeverityBlock:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}

// Exceeds returns true if s is more severe than other.
func (s Severity) Exceeds(other Severity) bool {
	return s.rank() > other.rank()
}

// Valid returns true if s is one of the three known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityAllow, SeverityWarn, SeverityBlock:
		return true
	default:
		return false
	}
}

// Kind discriminates the rule catalogue. The catalogue is closed: the
// evaluator dispatches exhaustively over these eight kinds and treats
// anything else as a no-op for forward compatibility.
type Kind string

const (
	// KindSensitiveFile matches file paths against a list of regexes
	// (case-insensitive).
	KindSensitiveFile Kind = "sensitive-file"

	// KindLargeChange matches files whose added+removed line count exceeds
	// a threshold.
	KindLargeChange Kind = "large-change"

	// KindSuspiciousKeywords matches literal substrings in added-line
	// content (case-insensitive).
	KindSuspiciousKeywords Kind = "suspicious-keywords"

	// KindPotentialSecret matches regexes against added-line content.
	KindPotentialSecret Kind = "potential-secret"

	// KindLargeMigration matches migration-path files whose total changed
	// lines exceed a threshold.
	KindLargeMigration Kind = "large-migration"

	// KindPathPattern matches (or, in exclude mode, fails to match) the
	// file path against a single regex.
	KindPathPattern Kind = "path-pattern"

	// KindLinePattern matches a regex against lines in a configurable
	// scope (added, removed, both).
	KindLinePattern Kind = "line-pattern"

	// KindFileSize matches files whose added content exceeds a byte
	// threshold.
	KindFileSize Kind = "file-size"
)

// Known returns true if k is part of the catalogue.
func (k Kind) Known() bool {
	switch k {
	case KindSensitiveFile, KindLargeChange, KindSuspiciousKeywords,
		KindPotentialSecret, KindLargeMigration, KindPathPattern,
		KindLinePattern, KindFileSize:
		return true
	default:
		return false
	}
}

// PathMode selects how a path-pattern rule interprets its regex.
type PathMode string

const (
	// PathModeInclude violates when the path matches the pattern.
	PathModeInclude PathMode = "include"

	// PathModeExclude violates when the path does not match the pattern.
	PathModeExclude PathMode = "exclude"
)

// LineScope selects which lines a line-pattern rule scans.
type LineScope string

const (
	// ScopeAdded scans added lines only.
	ScopeAdded LineScope = "added"

	// ScopeRemoved scans removed lines only.
	ScopeRemoved LineScope = "removed"

	// ScopeBoth scans added and removed lines.
	ScopeBoth LineScope = "both"
)

// Rule is a single governance rule. The Kind field selects the matcher and
// which of the kind-specific configuration fields apply.
type Rule struct {
	// ID uniquely identifies the rule within a policy.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable rule name.
	Name string `yaml:"name" json:"name"`

	// Description explains what the rule guards against.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Enabled controls whether the rule participates in evaluation.
	// Disabled rules are skipped before dispatch and never produce
	// violations.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Severity is the severity a violation of this rule carries.
	Severity Severity `yaml:"severity" json:"severity"`

	// Kind selects the matcher from the catalogue.
	Kind Kind `yaml:"kind" json:"kind"`

	// Patterns is the regex list for sensitive-file (path regexes) and
	// potential-secret (content regexes) rules.
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`

	// Keywords is the literal substring list for suspicious-keywords rules.
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`

	// Threshold is the line threshold for large-change and large-migration
	// rules, and the byte threshold for file-size rules.
	Threshold int `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// MigrationPaths is the migration-path regex list for large-migration
	// rules.
	MigrationPaths []string `yaml:"migration_paths,omitempty" json:"migration_paths,omitempty"`

	// Pattern is the single regex for path-pattern and line-pattern rules.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Mode selects include or exclude matching for path-pattern rules.
	Mode PathMode `yaml:"mode,omitempty" json:"mode,omitempty"`

	// Scope selects which lines line-pattern rules scan.
	Scope LineScope `yaml:"scope,omitempty" json:"scope,omitempty"`
}

// Policy is a named, versioned, ordered collection of rules.
type Policy struct {
	// ID uniquely identifies the policy.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable policy name.
	Name string `yaml:"name" json:"name"`

	// Description explains the policy's intent.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Version is the policy document version.
	Version string `yaml:"version" json:"version"`

	// Rules holds the rules in evaluation order. Rule IDs are unique
	// within one policy after merge.
	Rules []Rule `yaml:"rules" json:"rules"`

	// CreatedAt is the optional creation timestamp.
	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`

	// UpdatedAt is the optional last-update timestamp.
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// GetRule returns the rule with the given id, or nil if not found.
func (p *Policy) GetRule(id string) *Rule {
	for i := range p.Rules {
		if p.Rules[i].ID == id {
			return &p.Rules[i]
		}
	}
	return nil
}

// EnabledRules returns the enabled rules in evaluation order.
func (p *Policy) EnabledRules() []Rule {
	var enabled []Rule
	for _, r := range p.Rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

// RuleCount returns the total number of rules in the policy.
func (p *Policy) RuleCount() int {
	return len(p.Rules)
}

// Violation is a single rule match recorded against one file.
type Violation struct {
	// RuleID identifies the violated rule.
	RuleID string `json:"rule_id"`

	// FilePath is the path of the violating file.
	FilePath string `json:"file_path"`

	// Severity is the rule's severity.
	Severity Severity `json:"severity"`

	// Message is a human-readable summary. It never carries raw matched
	// content beyond a bounded preview.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of evaluating a rule set over a change set.
type Result struct {
	// Decision is the aggregate allow/warn/block outcome. It is block if
	// any violation has severity block, else warn if any has severity
	// warn, else allow.
	Decision Severity `json:"decision"`

	// Violations holds every violation in file-major, rule-minor
	// evaluation order.
	Violations []Violation `json:"violations"`
}
