package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
)

func sampleResult() *policy.Result {
	return &policy.Result{
		Decision: policy.SeverityBlock,
		Violations: []policy.Violation{
			{RuleID: "sensitive-files", FilePath: ".env", Severity: policy.SeverityBlock, Message: "path matches sensitive pattern"},
			{RuleID: "large-change", FilePath: "pkg/big.go", Severity: policy.SeverityWarn},
		},
	}
}

// TestTextFormatter_Result tests the dedicated result rendering.
func TestTextFormatter_Result(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatText)

	if err := f.FormatTo(&buf, sampleResult()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"decision: block", "2 violation(s)", "[block] .env  sensitive-files", "[warn] pkg/big.go  large-change"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestTextFormatter_NoViolations tests the clean-result rendering.
func TestTextFormatter_NoViolations(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{}

	result := &policy.Result{Decision: policy.SeverityAllow}
	if err := f.FormatTo(&buf, result); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	if !strings.Contains(buf.String(), "no violations") {
		t.Errorf("output = %q, want no-violations line", buf.String())
	}
}

// TestTextFormatter_Summary tests the diff summary rendering.
func TestTextFormatter_Summary(t *testing.T) {
	summary := diff.Summarize([]diff.File{
		{Path: "a.go", ChangeType: diff.ChangeModify, AddedLines: 10, RemovedLines: 2},
		{Path: "b.go", ChangeType: diff.ChangeAdd, AddedLines: 5},
	})

	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, summary); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "a.go | +10 -2 (modify)") {
		t.Errorf("output missing per-file line:\n%s", out)
	}
	if !strings.Contains(out, "2 file(s) changed, 15 insertion(s), 2 deletion(s)") {
		t.Errorf("output missing totals line:\n%s", out)
	}
}

// TestJSONFormatter tests that JSON output round-trips the result.
func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON)

	if err := f.FormatTo(&buf, sampleResult()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded policy.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Decision != policy.SeverityBlock || len(decoded.Violations) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

// TestCommandError tests wrapping and unwrapping.
func TestCommandError(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("check", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "check") {
		t.Errorf("Error() = %q, want command name", err.Error())
	}
}
