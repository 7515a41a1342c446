package manager

import (
	"testing"

	"mercator-hq/saturn/pkg/policy"
)

func warnRule(id string) policy.Rule {
	return policy.Rule{
		ID:        id,
		Name:      "rule " + id,
		Enabled:   true,
		Severity:  policy.SeverityWarn,
		Kind:      policy.KindLargeChange,
		Threshold: 100,
	}
}

// TestCreate tests policy construction.
func TestCreate(t *testing.T) {
	rules := []policy.Rule{warnRule("a"), warnRule("b")}
	p := Create("team-policy", "Team policy", "1.2.0", "team rules", rules)

	if p.ID != "team-policy" || p.Name != "Team policy" || p.Version != "1.2.0" {
		t.Errorf("Create() metadata = %+v", p)
	}
	if len(p.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(p.Rules))
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}

	// The policy owns its rule slice.
	rules[0].ID = "mutated"
	if p.Rules[0].ID == "mutated" {
		t.Error("Create() shares the caller's rule slice")
	}
}

// TestMerge_OverrideInPlace tests that a later policy redeclaring a rule
// id replaces the earlier rule without changing its position and without
// duplicating it.
func TestMerge_OverrideInPlace(t *testing.T) {
	base := Create("base", "Base", "1.0.0", "", []policy.Rule{
		warnRule("a"), warnRule("b"), warnRule("c"),
	})

	override := warnRule("b")
	override.Severity = policy.SeverityBlock
	overlay := Create("overlay", "Overlay", "1.0.0", "", []policy.Rule{override, warnRule("d")})

	merged := Merge(base, overlay)

	wantOrder := []string{"a", "b", "c", "d"}
	if len(merged.Rules) != len(wantOrder) {
		t.Fatalf("len(Rules) = %d, want %d", len(merged.Rules), len(wantOrder))
	}
	for i, id := range wantOrder {
		if merged.Rules[i].ID != id {
			t.Errorf("Rules[%d].ID = %q, want %q", i, merged.Rules[i].ID, id)
		}
	}
	if got := merged.GetRule("b").Severity; got != policy.SeverityBlock {
		t.Errorf("merged rule b severity = %q, want block", got)
	}
}

// TestMerge_MetadataFromFirst tests that merged metadata comes from the
// first policy.
func TestMerge_MetadataFromFirst(t *testing.T) {
	first := Create("first", "First", "1.0.0", "first description", nil)
	second := Create("second", "Second", "9.9.9", "second description", nil)

	merged := Merge(first, second)

	if merged.ID != "first" || merged.Name != "First" || merged.Version != "1.0.0" {
		t.Errorf("merged metadata = %+v, want first policy's", merged)
	}
}

// TestMerge_Empty tests that merging no policies yields the default
// catalogue.
func TestMerge_Empty(t *testing.T) {
	merged := Merge()

	if merged.ID != policy.DefaultPolicyID {
		t.Errorf("Merge() id = %q, want %q", merged.ID, policy.DefaultPolicyID)
	}
	if merged.RuleCount() == 0 {
		t.Error("Merge() returned an empty default catalogue")
	}
}

// TestMerge_DoesNotMutateInputs tests that inputs survive a merge intact.
func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Create("base", "Base", "1.0.0", "", []policy.Rule{warnRule("a")})

	override := warnRule("a")
	override.Severity = policy.SeverityBlock
	overlay := Create("overlay", "Overlay", "1.0.0", "", []policy.Rule{override})

	Merge(base, overlay)

	if base.Rules[0].Severity != policy.SeverityWarn {
		t.Error("Merge() mutated the base policy")
	}
}

// TestValidate tests the structural checks and that problems are
// reported as a list rather than raised.
func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		policy   *policy.Policy
		wantErrs int
	}{
		{
			name:     "valid default catalogue",
			policy:   policy.DefaultPolicy(),
			wantErrs: 0,
		},
		{
			name:     "nil policy",
			policy:   nil,
			wantErrs: 1,
		},
		{
			name:     "missing everything",
			policy:   &policy.Policy{},
			wantErrs: 4, // id, name, version, rules
		},
		{
			name: "rule missing id, name, kind and severity",
			policy: &policy.Policy{
				ID: "p", Name: "P", Version: "1.0.0",
				Rules: []policy.Rule{{}},
			},
			wantErrs: 4,
		},
		{
			name: "unknown kind and invalid severity",
			policy: &policy.Policy{
				ID: "p", Name: "P", Version: "1.0.0",
				Rules: []policy.Rule{
					{ID: "r", Name: "R", Kind: "telepathy", Severity: "maybe"},
				},
			},
			wantErrs: 2,
		},
		{
			name: "duplicate rule ids",
			policy: &policy.Policy{
				ID: "p", Name: "P", Version: "1.0.0",
				Rules: []policy.Rule{warnRule("same"), warnRule("same")},
			},
			wantErrs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.policy)
			if len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

// TestExport_RoundTrip tests that an exported policy parses back with
// the same rules.
func TestExport_RoundTrip(t *testing.T) {
	original := Create("export-test", "Export test", "2.0.0", "round trip", []policy.Rule{
		warnRule("a"),
		{
			ID: "b", Name: "rule b", Enabled: false,
			Severity: policy.SeverityBlock, Kind: policy.KindLinePattern,
			Pattern: `TODO`, Scope: policy.ScopeAdded,
		},
	})

	data, err := Export(original)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(exported) error = %v", err)
	}

	if parsed.ID != original.ID || parsed.Version != original.Version {
		t.Errorf("round trip metadata = %+v, want %+v", parsed, original)
	}
	if len(parsed.Rules) != len(original.Rules) {
		t.Fatalf("round trip len(Rules) = %d, want %d", len(parsed.Rules), len(original.Rules))
	}
	if parsed.Rules[1].Enabled {
		t.Error("round trip lost the explicit enabled: false")
	}
	if parsed.Rules[1].Pattern != "TODO" || parsed.Rules[1].Scope != policy.ScopeAdded {
		t.Errorf("round trip rule b = %+v", parsed.Rules[1])
	}
}
