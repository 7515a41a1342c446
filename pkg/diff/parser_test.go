package diff

import (
	"strings"
	"testing"
)

// TestParse_NewFile tests parsing a diff that adds a new file.
func TestParse_NewFile(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/.env b/.env",
		"new file mode 100644",
		"index 0000000..f3c21a8",
		"--- /dev/null",
		"+++ b/.env",
		"@@ -0,0 +1,2 @@",
		"+DATABASE_URL=postgres://localhost/app",
		"+API_KEY=abc123",
		"",
	}, "\n")

	files := Parse(text)
	if len(files) != 1 {
		t.Fatalf("Parse() returned %d files, want 1", len(files))
	}

	f := files[0]
	if f.Path != ".env" {
		t.Errorf("Path = %q, want %q", f.Path, ".env")
	}
	if f.ChangeType != ChangeAdd {
		t.Errorf("ChangeType = %q, want %q", f.ChangeType, ChangeAdd)
	}
	if f.AddedLines != 2 {
		t.Errorf("AddedLines = %d, want 2", f.AddedLines)
	}
	if f.RemovedLines != 0 {
		t.Errorf("RemovedLines = %d, want 0", f.RemovedLines)
	}
}

// TestParse_Modification tests a hunk with context, no removals, one addition.
func TestParse_Modification(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/file.js b/file.js",
		"index 83db48f..bf269f4 100644",
		"--- a/file.js",
		"+++ b/file.js",
		"@@ -1,2 +1,3 @@",
		" const x = 1;",
		"+const y = 2;",
		" module.exports = { x };",
	}, "\n")

	files := Parse(text)
	if len(files) != 1 {
		t.Fatalf("Parse() returned %d files, want 1", len(files))
	}

	f := files[0]
	if f.ChangeType != ChangeModify {
		t.Errorf("ChangeType = %q, want %q", f.ChangeType, ChangeModify)
	}
	if f.AddedLines != 1 || f.RemovedLines != 0 {
		t.Errorf("AddedLines/RemovedLines = %d/%d, want 1/0", f.AddedLines, f.RemovedLines)
	}

	if len(f.Hunks) != 1 {
		t.Fatalf("len(Hunks) = %d, want 1", len(f.Hunks))
	}
	hunk := f.Hunks[0]
	if hunk.OldStart != 1 || hunk.OldLines != 2 || hunk.NewStart != 1 || hunk.NewLines != 3 {
		t.Errorf("hunk header = -%d,%d +%d,%d, want -1,2 +1,3",
			hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)
	}

	wantKinds := []LineKind{LineContext, LineAdded, LineContext}
	if len(hunk.Lines) != len(wantKinds) {
		t.Fatalf("len(Lines) = %d, want %d", len(hunk.Lines), len(wantKinds))
	}
	for i, want := range wantKinds {
		if hunk.Lines[i].Kind != want {
			t.Errorf("Lines[%d].Kind = %q, want %q", i, hunk.Lines[i].Kind, want)
		}
	}
	if hunk.Lines[1].Content != "const y = 2;" {
		t.Errorf("added line content = %q, want %q", hunk.Lines[1].Content, "const y = 2;")
	}
}

// TestParse_NoDiffMarkers tests that arbitrary prose yields an empty list.
func TestParse_NoDiffMarkers(t *testing.T) {
	texts := []string{
		"",
		"this is not a diff at all",
		"just\nsome\nprose\nwith + and - characters\n",
		"@@ -1,2 +1,2 @@\n+orphaned hunk with no file header\n",
	}

	for _, text := range texts {
		if files := Parse(text); len(files) != 0 {
			t.Errorf("Parse(%q) returned %d files, want 0", text, len(files))
		}
	}
}

// TestParse_ChangeTypes tests change-type classification precedence.
func TestParse_ChangeTypes(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantType    ChangeType
		wantPath    string
		wantOldPath string
	}{
		{
			name: "explicit new file marker",
			text: "diff --git a/added.go b/added.go\n" +
				"new file mode 100644\n" +
				"@@ -0,0 +1 @@\n+package main\n",
			wantType: ChangeAdd,
			wantPath: "added.go",
		},
		{
			name: "explicit deleted file marker",
			text: "diff --git a/gone.go b/gone.go\n" +
				"deleted file mode 100644\n" +
				"@@ -1 +0,0 @@\n-package main\n",
			wantType: ChangeDelete,
			wantPath: "gone.go",
		},
		{
			name: "dev null old path",
			text: "diff --git /dev/null b/fresh.go\n" +
				"@@ -0,0 +1 @@\n+package main\n",
			wantType: ChangeAdd,
			wantPath: "fresh.go",
		},
		{
			name: "dev null new path",
			text: "diff --git a/stale.go /dev/null\n" +
				"@@ -1 +0,0 @@\n-package main\n",
			wantType: ChangeDelete,
			wantPath: "stale.go",
		},
		{
			name: "rename",
			text: "diff --git a/old_name.go b/new_name.go\n" +
				"similarity index 100%\n" +
				"rename from old_name.go\n" +
				"rename to new_name.go\n",
			wantType:    ChangeRename,
			wantPath:    "new_name.go",
			wantOldPath: "old_name.go",
		},
		{
			name: "modify",
			text: "diff --git a/same.go b/same.go\n" +
				"@@ -1 +1 @@\n-old\n+new\n",
			wantType: ChangeModify,
			wantPath: "same.go",
		},
		{
			name: "file literally named a is not a sentinel",
			text: "diff --git a/a b/a\n" +
				"@@ -1 +1 @@\n-old\n+new\n",
			wantType: ChangeModify,
			wantPath: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := Parse(tt.text)
			if len(files) != 1 {
				t.Fatalf("Parse() returned %d files, want 1", len(files))
			}

			f := files[0]
			if f.ChangeType != tt.wantType {
				t.Errorf("ChangeType = %q, want %q", f.ChangeType, tt.wantType)
			}
			if f.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", f.Path, tt.wantPath)
			}
			if f.OldPath != tt.wantOldPath {
				t.Errorf("OldPath = %q, want %q", f.OldPath, tt.wantOldPath)
			}
		})
	}
}

// TestParse_MultipleFiles tests that file and hunk order follow source order.
func TestParse_MultipleFiles(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/first.go b/first.go",
		"@@ -1 +1 @@",
		"-a",
		"+b",
		"@@ -10,2 +10,2 @@",
		" ctx",
		"-c",
		"+d",
		"diff --git a/second.go b/second.go",
		"@@ -5 +5 @@",
		"-e",
		"+f",
	}, "\n")

	files := Parse(text)
	if len(files) != 2 {
		t.Fatalf("Parse() returned %d files, want 2", len(files))
	}

	if files[0].Path != "first.go" || files[1].Path != "second.go" {
		t.Errorf("file order = [%q, %q], want [first.go, second.go]", files[0].Path, files[1].Path)
	}

	if len(files[0].Hunks) != 2 {
		t.Fatalf("first file has %d hunks, want 2", len(files[0].Hunks))
	}
	if files[0].Hunks[0].OldStart != 1 || files[0].Hunks[1].OldStart != 10 {
		t.Errorf("hunk order = [%d, %d], want [1, 10]",
			files[0].Hunks[0].OldStart, files[0].Hunks[1].OldStart)
	}
}

// TestParse_MalformedHunkHeader tests that an unparseable hunk header is
// skipped and change lines are ignored until the next valid header.
func TestParse_MalformedHunkHeader(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/file.go b/file.go",
		"@@ garbage header @@",
		"+ignored addition",
		"-ignored removal",
		"@@ -1 +1,2 @@",
		" kept",
		"+counted",
	}, "\n")

	files := Parse(text)
	if len(files) != 1 {
		t.Fatalf("Parse() returned %d files, want 1", len(files))
	}

	f := files[0]
	if len(f.Hunks) != 1 {
		t.Fatalf("len(Hunks) = %d, want 1 (malformed header must not open a hunk)", len(f.Hunks))
	}
	if f.AddedLines != 1 {
		t.Errorf("AddedLines = %d, want 1", f.AddedLines)
	}
	if f.RemovedLines != 0 {
		t.Errorf("RemovedLines = %d, want 0", f.RemovedLines)
	}
}

// TestParse_Conservation tests that the per-file counters always equal the
// per-line kind counts, including on partially malformed input.
func TestParse_Conservation(t *testing.T) {
	texts := map[string]string{
		"clean": strings.Join([]string{
			"diff --git a/x.go b/x.go",
			"@@ -1,3 +1,4 @@",
			" one",
			"-two",
			"+TWO",
			"+extra",
			" three",
		}, "\n"),
		"malformed tail": strings.Join([]string{
			"diff --git a/y.go b/y.go",
			"@@ -1 +1 @@",
			"-gone",
			"+here",
			"no prefix at all",
			"\\ No newline at end of file",
		}, "\n"),
		"truncated": "diff --git a/z.go b/z.go\n@@ -1,5 +1,5 @@\n+only",
	}

	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			for _, f := range Parse(text) {
				added, removed := 0, 0
				for _, h := range f.Hunks {
					for _, l := range h.Lines {
						switch l.Kind {
						case LineAdded:
							added++
						case LineRemoved:
							removed++
						}
					}
				}
				if f.AddedLines != added {
					t.Errorf("%s: AddedLines = %d, counted %d", f.Path, f.AddedLines, added)
				}
				if f.RemovedLines != removed {
					t.Errorf("%s: RemovedLines = %d, counted %d", f.Path, f.RemovedLines, removed)
				}
			}
		})
	}
}

// TestParse_OmittedCounts tests that omitted hunk line counts default to 0.
func TestParse_OmittedCounts(t *testing.T) {
	text := "diff --git a/x b/x\n@@ -3 +7 @@\n-old\n+new\n"

	files := Parse(text)
	if len(files) != 1 || len(files[0].Hunks) != 1 {
		t.Fatalf("Parse() = %d files, want 1 file with 1 hunk", len(files))
	}

	h := files[0].Hunks[0]
	if h.OldStart != 3 || h.OldLines != 0 || h.NewStart != 7 || h.NewLines != 0 {
		t.Errorf("hunk header = -%d,%d +%d,%d, want -3,0 +7,0",
			h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	}
}

// TestParse_LineNumbers tests old/new line number tracking within a hunk.
func TestParse_LineNumbers(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/n.go b/n.go",
		"@@ -10,3 +20,3 @@",
		" ctx",
		"-removed",
		"+added",
		" tail",
	}, "\n")

	files := Parse(text)
	lines := files[0].Hunks[0].Lines

	if lines[0].OldLine != 10 || lines[0].NewLine != 20 {
		t.Errorf("context line numbers = %d/%d, want 10/20", lines[0].OldLine, lines[0].NewLine)
	}
	if lines[1].OldLine != 11 || lines[1].NewLine != 0 {
		t.Errorf("removed line numbers = %d/%d, want 11/0", lines[1].OldLine, lines[1].NewLine)
	}
	if lines[2].NewLine != 21 || lines[2].OldLine != 0 {
		t.Errorf("added line numbers = %d/%d, want 0/21", lines[2].OldLine, lines[2].NewLine)
	}
	if lines[3].OldLine != 12 || lines[3].NewLine != 22 {
		t.Errorf("trailing context numbers = %d/%d, want 12/22", lines[3].OldLine, lines[3].NewLine)
	}
}

// TestFile_AddedContent tests added/removed content extraction helpers.
func TestFile_AddedContent(t *testing.T) {
	text := strings.Join([]string{
		"diff --git a/c.go b/c.go",
		"@@ -1,2 +1,2 @@",
		"-removed one",
		"+added one",
		"@@ -9,2 +9,2 @@",
		"-removed two",
		"+added two",
	}, "\n")

	f := Parse(text)[0]

	added := f.AddedContent()
	if len(added) != 2 || added[0] != "added one" || added[1] != "added two" {
		t.Errorf("AddedContent() = %v, want [added one, added two]", added)
	}

	removed := f.RemovedContent()
	if len(removed) != 2 || removed[0] != "removed one" || removed[1] != "removed two" {
		t.Errorf("RemovedContent() = %v, want [removed one, removed two]", removed)
	}

	if f.TotalChanged() != 4 {
		t.Errorf("TotalChanged() = %d, want 4", f.TotalChanged())
	}
}
