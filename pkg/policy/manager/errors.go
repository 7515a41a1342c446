package manager

import (
	"fmt"
	"strings"
)

// LoadError represents a failure to read a policy file.
type LoadError struct {
	// FilePath is the path that failed to load.
	FilePath string

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load policy %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load policy %q: %s", e.FilePath, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a failure to parse a policy document.
type ParseError struct {
	// FilePath is the source path, empty for in-memory documents.
	FilePath string

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *ParseError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("failed to parse policy %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse policy: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse policy: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorList aggregates multiple errors from a multi-file load.
type ErrorList struct {
	Errors []error
}

// Add appends an error to the list.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

// HasErrors returns true if the list contains at least one error.
func (l *ErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *ErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	msgs := make([]string, 0, len(l.Errors))
	for _, err := range l.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d error(s): %s", len(l.Errors), strings.Join(msgs, "; "))
}

// ValidationError is a single structural problem found in a policy
// document. Validation reports these as data, not as raised failures.
type ValidationError struct {
	// RuleID identifies the offending rule, empty for policy-level
	// problems.
	RuleID string `json:"rule_id,omitempty"`

	// Message describes the problem.
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("rule %q: %s", e.RuleID, e.Message)
	}
	return e.Message
}
