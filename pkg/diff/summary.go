package diff

// FileSummary is the per-file portion of a diff summary.
type FileSummary struct {
	// Path is the file path.
	Path string `json:"path"`

	// ChangeType classifies the change.
	ChangeType ChangeType `json:"change_type"`

	// Added is the number of added lines.
	Added int `json:"added"`

	// Removed is the number of removed lines.
	Removed int `json:"removed"`
}

// Summary is a pure aggregate view over a parsed file list.
type Summary struct {
	// TotalFiles is the number of changed files.
	TotalFiles int `json:"total_files"`

	// TotalAdded is the number of added lines across all files.
	TotalAdded int `json:"total_added"`

	// TotalRemoved is the number of removed lines across all files.
	TotalRemoved int `json:"total_removed"`

	// PerFile holds one entry per file, in parse order.
	PerFile []FileSummary `json:"per_file"`
}

// Summarize computes an aggregate summary over parsed files. It holds no
// hidden state and does not modify its input.
func Summarize(files []File) Summary {
	s := Summary{
		TotalFiles: len(files),
		PerFile:    make([]FileSummary, 0, len(files)),
	}

	for _, f := range files {
		s.TotalAdded += f.AddedLines
		s.TotalRemoved += f.RemovedLines
		s.PerFile = append(s.PerFile, FileSummary{
			Path:       f.Path,
			ChangeType: f.ChangeType,
			Added:      f.AddedLines,
			Removed:    f.RemovedLines,
		})
	}

	return s
}
