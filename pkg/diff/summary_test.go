package diff

import "testing"

// TestSummarize tests aggregate totals and per-file entries.
func TestSummarize(t *testing.T) {
	files := []File{
		{Path: "a.go", ChangeType: ChangeModify, AddedLines: 3, RemovedLines: 1},
		{Path: "b.go", ChangeType: ChangeAdd, AddedLines: 10, RemovedLines: 0},
		{Path: "c.go", ChangeType: ChangeDelete, AddedLines: 0, RemovedLines: 7},
	}

	s := Summarize(files)

	if s.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", s.TotalFiles)
	}
	if s.TotalAdded != 13 {
		t.Errorf("TotalAdded = %d, want 13", s.TotalAdded)
	}
	if s.TotalRemoved != 8 {
		t.Errorf("TotalRemoved = %d, want 8", s.TotalRemoved)
	}

	if len(s.PerFile) != 3 {
		t.Fatalf("len(PerFile) = %d, want 3", len(s.PerFile))
	}
	for i, f := range files {
		entry := s.PerFile[i]
		if entry.Path != f.Path || entry.ChangeType != f.ChangeType ||
			entry.Added != f.AddedLines || entry.Removed != f.RemovedLines {
			t.Errorf("PerFile[%d] = %+v, want match for %+v", i, entry, f)
		}
	}
}

// TestSummarize_Empty tests summarizing an empty file list.
func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalFiles != 0 || s.TotalAdded != 0 || s.TotalRemoved != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero totals", s)
	}
	if len(s.PerFile) != 0 {
		t.Errorf("len(PerFile) = %d, want 0", len(s.PerFile))
	}
}
