package manager

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/policy"
)

// Create constructs a new policy from the given metadata and rules.
// Timestamps are set to the current time.
func Create(id, name, version, description string, rules []policy.Rule) *policy.Policy {
	now := time.Now().UTC()
	return &policy.Policy{
		ID:          id,
		Name:        name,
		Description: description,
		Version:     version,
		Rules:       append([]policy.Rule(nil), rules...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Merge combines policies left to right into a single policy. Metadata
// comes from the first policy. Rules are keyed by id: a later policy
// redeclaring a rule id replaces the earlier rule in place, preserving
// its original position; new ids are appended in encounter order. With
// no arguments, Merge returns the default catalogue.
func Merge(policies ...*policy.Policy) *policy.Policy {
	if len(policies) == 0 {
		return policy.DefaultPolicy()
	}

	first := policies[0]
	merged := &policy.Policy{
		ID:          first.ID,
		Name:        first.Name,
		Description: first.Description,
		Version:     first.Version,
		CreatedAt:   first.CreatedAt,
		UpdatedAt:   first.UpdatedAt,
	}

	index := make(map[string]int)
	for _, p := range policies {
		for _, r := range p.Rules {
			if i, seen := index[r.ID]; seen {
				merged.Rules[i] = r
				continue
			}
			index[r.ID] = len(merged.Rules)
			merged.Rules = append(merged.Rules, r)
		}
	}

	return merged
}

// Validate checks a policy for structural problems. It never raises;
// it reports every problem found as a list, empty when the policy is
// well formed. Unknown rule kinds are reported as problems here even
// though the evaluator tolerates them at run time.
func Validate(p *policy.Policy) []ValidationError {
	var errs []ValidationError

	if p == nil {
		return []ValidationError{{Message: "policy is nil"}}
	}
	if p.ID == "" {
		errs = append(errs, ValidationError{Message: "missing policy id"})
	}
	if p.Name == "" {
		errs = append(errs, ValidationError{Message: "missing policy name"})
	}
	if p.Version == "" {
		errs = append(errs, ValidationError{Message: "missing policy version"})
	}
	if p.Rules == nil {
		errs = append(errs, ValidationError{Message: "missing rules"})
	}

	seen := make(map[string]bool)
	for i, r := range p.Rules {
		ref := r.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
			errs = append(errs, ValidationError{RuleID: ref, Message: "missing rule id"})
		} else if seen[r.ID] {
			errs = append(errs, ValidationError{RuleID: r.ID, Message: "duplicate rule id"})
		}
		seen[r.ID] = true

		if r.Name == "" {
			errs = append(errs, ValidationError{RuleID: ref, Message: "missing rule name"})
		}
		if r.Kind == "" {
			errs = append(errs, ValidationError{RuleID: ref, Message: "missing rule kind"})
		} else if !r.Kind.Known() {
			errs = append(errs, ValidationError{RuleID: ref, Message: fmt.Sprintf("unknown rule kind %q", r.Kind)})
		}
		if r.Severity == "" {
			errs = append(errs, ValidationError{RuleID: ref, Message: "missing rule severity"})
		} else if !r.Severity.Valid() {
			errs = append(errs, ValidationError{RuleID: ref, Message: fmt.Sprintf("invalid severity %q", r.Severity)})
		}
	}

	return errs
}

// Export serializes a policy to YAML. The output round-trips through
// Parse.
func Export(p *policy.Policy) ([]byte, error) {
	if p == nil {
		return nil, &ParseError{Message: "cannot export nil policy"}
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, &ParseError{Message: "YAML serialization failed", Cause: err}
	}
	return data, nil
}
