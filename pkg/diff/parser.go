package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// devNull is the canonical sentinel git uses for the missing side of a file
// creation or deletion. Sentinel detection is restricted to this marker;
// a file literally named "a" or "b" is parsed as a regular path.
const devNull = "/dev/null"

// parseState identifies where the parser is in the diff text.
type parseState int

const (
	// stateAwaitingFile means no file record is open.
	stateAwaitingFile parseState = iota

	// stateInFileHeader means a file record is open but no hunk has started.
	stateInFileHeader

	// stateInHunk means both a file record and a hunk are open.
	stateInHunk
)

// hunkHeaderPattern matches "@@ -<oldStart>[,<oldLines>] +<newStart>[,<newLines>] @@".
var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts unified-diff text into an ordered list of file-change
// records. It never fails: unrecognized or malformed lines are skipped and
// input with no recognizable diff markers yields an empty list.
func Parse(text string) []File {
	p := parser{state: stateAwaitingFile}

	for _, line := range strings.Split(text, "\n") {
		p.consume(line)
	}

	// End of input flushes the last open hunk and file.
	p.flushFile()

	return p.files
}

// openFile is the partially-built record for the file currently being
// scanned. It is sealed into the result list when the next file header or
// the end of input is reached.
type openFile struct {
	oldPath     string
	newPath     string
	forceAdd    bool
	forceDelete bool
	added       int
	removed     int
	hunks       []Hunk
}

type parser struct {
	state parseState
	files []File

	file *openFile
	hunk *Hunk

	// Line counters within the open hunk.
	oldNo int
	newNo int
}

// consume processes a single line and applies the state transition rules.
func (p *parser) consume(line string) {
	// A file header always starts a new record, whatever the current state.
	if oldPath, newPath, ok := parseFileHeader(line); ok {
		p.flushFile()
		p.file = &openFile{oldPath: oldPath, newPath: newPath}
		p.state = stateInFileHeader
		return
	}

	switch p.state {
	case stateAwaitingFile:
		// Nothing open; skip until the next file header.

	case stateInFileHeader:
		p.consumeHeaderLine(line)

	case stateInHunk:
		if strings.HasPrefix(line, "@@") {
			p.consumeHunkHeader(line)
			return
		}
		p.consumeHunkLine(line)
	}
}

// consumeHeaderLine handles lines between the file header and the first hunk.
func (p *parser) consumeHeaderLine(line string) {
	switch {
	case strings.HasPrefix(line, "new file"):
		p.file.forceAdd = true

	case strings.HasPrefix(line, "deleted file"):
		p.file.forceDelete = true

	case strings.HasPrefix(line, "@@"):
		p.consumeHunkHeader(line)

	default:
		// index lines, rename-from/rename-to lines, mode lines and the
		// ---/+++ trailers carry no additional state. Rename is decided by
		// path comparison at flush time.
	}
}

// consumeHunkHeader flushes any open hunk and opens a new one if the header
// parses. A header that fails to match is skipped; subsequent change lines
// are ignored until the next valid header or file marker.
func (p *parser) consumeHunkHeader(line string) {
	p.flushHunk()

	m := hunkHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		p.state = stateInFileHeader
		return
	}

	p.hunk = &Hunk{
		OldStart: atoiDefault(m[1], 0),
		OldLines: atoiDefault(m[2], 0),
		NewStart: atoiDefault(m[3], 0),
		NewLines: atoiDefault(m[4], 0),
	}
	p.oldNo = p.hunk.OldStart
	p.newNo = p.hunk.NewStart
	p.state = stateInHunk
}

// consumeHunkLine classifies a change line within an open hunk.
func (p *parser) consumeHunkLine(line string) {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		// File trailers, not change lines.

	case strings.HasPrefix(line, "+"):
		p.hunk.Lines = append(p.hunk.Lines, Line{
			Kind:    LineAdded,
			Content: line[1:],
			NewLine: p.newNo,
		})
		p.newNo++
		p.file.added++

	case strings.HasPrefix(line, "-"):
		p.hunk.Lines = append(p.hunk.Lines, Line{
			Kind:    LineRemoved,
			Content: line[1:],
			OldLine: p.oldNo,
		})
		p.oldNo++
		p.file.removed++

	case strings.HasPrefix(line, " "):
		p.hunk.Lines = append(p.hunk.Lines, Line{
			Kind:    LineContext,
			Content: line[1:],
			OldLine: p.oldNo,
			NewLine: p.newNo,
		})
		p.oldNo++
		p.newNo++

	default:
		// Anything else inside a hunk is ignored.
	}
}

// flushHunk seals the open hunk into the open file.
func (p *parser) flushHunk() {
	if p.hunk == nil {
		return
	}
	p.file.hunks = append(p.file.hunks, *p.hunk)
	p.hunk = nil
}

// flushFile seals the open file (and any open hunk) into the result list.
func (p *parser) flushFile() {
	if p.file == nil {
		return
	}
	p.flushHunk()

	f := File{
		ChangeType:   p.file.changeType(),
		AddedLines:   p.file.added,
		RemovedLines: p.file.removed,
		Hunks:        p.file.hunks,
	}

	switch f.ChangeType {
	case ChangeDelete:
		f.Path = p.file.oldPath
	case ChangeRename:
		f.Path = p.file.newPath
		f.OldPath = p.file.oldPath
	default:
		f.Path = p.file.newPath
	}

	p.files = append(p.files, f)
	p.file = nil
	p.state = stateAwaitingFile
}

// changeType decides the file's change type. Precedence: explicit new-file
// marker, explicit deleted-file marker, /dev/null sentinel on either side,
// differing paths (rename), otherwise modify.
func (of *openFile) changeType() ChangeType {
	switch {
	case of.forceAdd:
		return ChangeAdd
	case of.forceDelete:
		return ChangeDelete
	case of.oldPath == devNull:
		return ChangeAdd
	case of.newPath == devNull:
		return ChangeDelete
	case of.oldPath != of.newPath:
		return ChangeRename
	default:
		return ChangeModify
	}
}

// parseFileHeader extracts the old and new paths from a
// "diff --git a/<old> b/<new>" line.
func parseFileHeader(line string) (oldPath, newPath string, ok bool) {
	const marker = "diff --git "
	if !strings.HasPrefix(line, marker) {
		return "", "", false
	}

	fields := strings.Fields(line[len(marker):])
	if len(fields) < 2 {
		return "", "", false
	}

	oldPath = strings.TrimPrefix(fields[0], "a/")
	newPath = strings.TrimPrefix(fields[len(fields)-1], "b/")
	return oldPath, newPath, true
}

// atoiDefault parses s as an integer, returning def for an empty or
// malformed submatch.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
