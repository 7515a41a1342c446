package diff

// LineKind classifies a single line within a hunk.
type LineKind string

const (
	// LineContext is an unchanged line included for context.
	LineContext LineKind = "context"

	// LineAdded is a line added by the change.
	LineAdded LineKind = "added"

	// LineRemoved is a line removed by the change.
	LineRemoved LineKind = "removed"
)

// ChangeType classifies how a file was changed.
type ChangeType string

const (
	// ChangeAdd indicates a newly created file.
	ChangeAdd ChangeType = "add"

	// ChangeDelete indicates a deleted file.
	ChangeDelete ChangeType = "delete"

	// ChangeModify indicates an in-place modification.
	ChangeModify ChangeType = "modify"

	// ChangeRename indicates the file was renamed (old path retained).
	ChangeRename ChangeType = "rename"
)

// Line is a single classified line inside a hunk.
// Lines are immutable once created.
type Line struct {
	// Kind classifies the line (context, added, removed).
	Kind LineKind `json:"kind"`

	// Content is the line text with the diff prefix character stripped.
	Content string `json:"content"`

	// OldLine is the line number in the old file (0 when not applicable,
	// i.e. for added lines).
	OldLine int `json:"old_line,omitempty"`

	// NewLine is the line number in the new file (0 when not applicable,
	// i.e. for removed lines).
	NewLine int `json:"new_line,omitempty"`
}

// Hunk is a contiguous region of changed lines with its old/new position.
// Lines appear in source order.
type Hunk struct {
	// OldStart is the starting line in the old file.
	OldStart int `json:"old_start"`

	// OldLines is the line count in the old file (0 when omitted).
	OldLines int `json:"old_lines"`

	// NewStart is the starting line in the new file.
	NewStart int `json:"new_start"`

	// NewLines is the line count in the new file (0 when omitted).
	NewLines int `json:"new_lines"`

	// Lines holds the classified lines in source order.
	Lines []Line `json:"lines"`
}

// File is one file-change record parsed from a diff.
//
// Invariants maintained by the parser:
//   - AddedLines equals the count of added-kind lines summed over Hunks.
//   - RemovedLines equals the count of removed-kind lines summed over Hunks.
//   - Hunks appear in the order they occurred in the source text.
//
// A File is sealed when the parser reaches the next file header or the end
// of input; it is never mutated afterwards.
type File struct {
	// Path is the file path. For deletions this is the old path, otherwise
	// the new path.
	Path string `json:"path"`

	// OldPath is the pre-rename path. Set only when ChangeType is rename.
	OldPath string `json:"old_path,omitempty"`

	// ChangeType classifies the change (add, delete, modify, rename).
	ChangeType ChangeType `json:"change_type"`

	// AddedLines is the number of added lines across all hunks.
	AddedLines int `json:"added_lines"`

	// RemovedLines is the number of removed lines across all hunks.
	RemovedLines int `json:"removed_lines"`

	// Hunks holds the hunks in source order.
	Hunks []Hunk `json:"hunks"`
}

// TotalChanged returns the total number of changed lines in the file.
func (f *File) TotalChanged() int {
	return f.AddedLines + f.RemovedLines
}

// AddedContent returns the content of every added line across all hunks,
// in source order. Rule matchers scan this slice.
func (f *File) AddedContent() []string {
	var lines []string
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineAdded {
				lines = append(lines, l.Content)
			}
		}
	}
	return lines
}

// RemovedContent returns the content of every removed line across all hunks,
// in source order.
func (f *File) RemovedContent() []string {
	var lines []string
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Kind == LineRemoved {
				lines = append(lines, l.Content)
			}
		}
	}
	return lines
}
