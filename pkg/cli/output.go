package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data interface{}) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	default:
		return &TextFormatter{}
	}
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// TextFormatter formats output as human-readable text. Evaluation
// results and diff summaries get dedicated renderings; everything else
// falls back to the default Go formatting.
type TextFormatter struct{}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	var err error
	switch v := data.(type) {
	case *policy.Result:
		_, err = io.WriteString(w, RenderResult(v))
	case policy.Result:
		_, err = io.WriteString(w, RenderResult(&v))
	case diff.Summary:
		_, err = io.WriteString(w, RenderSummary(v))
	default:
		_, err = fmt.Fprintf(w, "%v\n", data)
	}
	return err
}

// RenderResult renders an evaluation result as text, one violation per
// line grouped under the decision.
func RenderResult(r *policy.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "decision: %s\n", r.Decision)

	if len(r.Violations) == 0 {
		b.WriteString("no violations\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d violation(s):\n", len(r.Violations))
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "  [%s] %s  %s", v.Severity, v.FilePath, v.RuleID)
		if v.Message != "" {
			fmt.Fprintf(&b, ": %s", v.Message)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderSummary renders a change-set summary as text in the style of
// git diff --stat.
func RenderSummary(s diff.Summary) string {
	var b strings.Builder
	for _, f := range s.PerFile {
		fmt.Fprintf(&b, " %s | +%d -%d (%s)\n", f.Path, f.Added, f.Removed, f.ChangeType)
	}
	fmt.Fprintf(&b, " %d file(s) changed, %d insertion(s), %d deletion(s)\n",
		s.TotalFiles, s.TotalAdded, s.TotalRemoved)
	return b.String()
}
