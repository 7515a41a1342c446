package gitdiff

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	udiff "github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Repository reads diffs out of a local git repository.
type Repository struct {
	repo   *gogit.Repository
	path   string
	logger *slog.Logger
}

// Open opens the repository containing path. The .git directory is
// discovered upward from path, so any directory inside a checkout
// works.
func Open(path string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %q: %w", path, err)
	}

	return &Repository{
		repo:   repo,
		path:   path,
		logger: logger.With("component", "gitdiff"),
	}, nil
}

// DiffRevisions returns unified diff text between two revisions. Both
// accept anything git rev-parse does (hashes, refs, HEAD~2, tags).
func (r *Repository) DiffRevisions(ctx context.Context, from, to string) (string, error) {
	fromCommit, err := r.resolveCommit(from)
	if err != nil {
		return "", err
	}
	toCommit, err := r.resolveCommit(to)
	if err != nil {
		return "", err
	}

	patch, err := fromCommit.PatchContext(ctx, toCommit)
	if err != nil {
		return "", fmt.Errorf("failed to compute patch %s..%s: %w", from, to, err)
	}

	return patch.String(), nil
}

// DiffWorktree returns unified diff text between a base revision
// (typically HEAD) and the current working tree, including untracked
// files. Binary files are skipped.
func (r *Repository) DiffWorktree(ctx context.Context, base string) (string, error) {
	baseCommit, err := r.resolveCommit(base)
	if err != nil {
		return "", err
	}
	baseTree, err := baseCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("failed to read tree of %s: %w", base, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read worktree status: %w", err)
	}

	// Stable output order regardless of map iteration.
	paths := make([]string, 0, len(status))
	for p, st := range status {
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		oldContent, hadOld, err := treeFileContent(baseTree, p)
		if err != nil {
			return "", err
		}
		newContent, hasNew, err := worktreeFileContent(wt, p)
		if err != nil {
			return "", err
		}

		if !hadOld && !hasNew {
			continue
		}
		if isBinary(oldContent) || isBinary(newContent) {
			r.logger.Debug("skipping binary file", "path", p)
			continue
		}
		if oldContent == newContent {
			continue
		}

		writeFileDiff(&b, p, oldContent, newContent, !hadOld, !hasNew)
	}

	return b.String(), nil
}

// resolveCommit resolves a revision string to its commit object.
func (r *Repository) resolveCommit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return commit, nil
}

// treeFileContent reads a file's content from a commit tree. The second
// return is false when the file does not exist in the tree.
func treeFileContent(tree *object.Tree, path string) (string, bool, error) {
	f, err := tree.File(path)
	if err == object.ErrFileNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q from tree: %w", path, err)
	}
	content, err := f.Contents()
	if err != nil {
		return "", false, fmt.Errorf("failed to read blob of %q: %w", path, err)
	}
	return content, true, nil
}

// worktreeFileContent reads a file's content from the working tree. The
// second return is false when the file is gone (deleted).
func worktreeFileContent(wt *gogit.Worktree, path string) (string, bool, error) {
	f, err := wt.Filesystem.Open(path)
	if err != nil {
		return "", false, nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", false, fmt.Errorf("failed to read worktree file %q: %w", path, err)
	}
	return string(data), true, nil
}

func isBinary(content string) bool {
	return strings.ContainsRune(content, '\x00')
}

// writeFileDiff appends one file's unified diff, produced with the same
// line-level diff go-git uses for its own patches, with zero context
// lines.
func writeFileDiff(b *strings.Builder, path, oldContent, newContent string, isNew, isDeleted bool) {
	fmt.Fprintf(b, "diff --git a/%s b/%s\n", path, path)
	switch {
	case isNew:
		b.WriteString("new file mode 100644\n")
		b.WriteString("--- /dev/null\n")
		fmt.Fprintf(b, "+++ b/%s\n", path)
	case isDeleted:
		b.WriteString("deleted file mode 100644\n")
		fmt.Fprintf(b, "--- a/%s\n", path)
		b.WriteString("+++ /dev/null\n")
	default:
		fmt.Fprintf(b, "--- a/%s\n", path)
		fmt.Fprintf(b, "+++ b/%s\n", path)
	}
	writeHunks(b, oldContent, newContent)
}

// writeHunks encodes line-level edits between two contents as unified
// diff hunks.
func writeHunks(b *strings.Builder, oldContent, newContent string) {
	diffs := udiff.Do(oldContent, newContent)

	oldLine, newLine := 1, 1
	var hunk strings.Builder
	var hunkOldStart, hunkOldCount, hunkNewStart, hunkNewCount int
	open := false

	flush := func() {
		if !open {
			return
		}
		fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n",
			hunkStart(hunkOldStart, hunkOldCount), hunkOldCount,
			hunkStart(hunkNewStart, hunkNewCount), hunkNewCount)
		b.WriteString(hunk.String())
		hunk.Reset()
		open = false
	}
	openHunk := func() {
		if !open {
			open = true
			hunkOldStart, hunkNewStart = oldLine, newLine
			hunkOldCount, hunkNewCount = 0, 0
		}
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			openHunk()
			for _, l := range lines {
				hunk.WriteString("-")
				hunk.WriteString(l)
				hunk.WriteByte('\n')
			}
			hunkOldCount += len(lines)
			oldLine += len(lines)
		case diffmatchpatch.DiffInsert:
			openHunk()
			for _, l := range lines {
				hunk.WriteString("+")
				hunk.WriteString(l)
				hunk.WriteByte('\n')
			}
			hunkNewCount += len(lines)
			newLine += len(lines)
		}
	}
	flush()
}

// hunkStart follows the unified diff convention that a zero-count range
// names the line before the change.
func hunkStart(start, count int) int {
	if count == 0 {
		return start - 1
	}
	return start
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
