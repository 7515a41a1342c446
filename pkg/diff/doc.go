// Package diff converts raw unified-diff text into a structured change model.
//
// The parser is a single-pass state machine over the diff text. It never
// fails: unrecognized or malformed lines are skipped and the parser produces
// as much structure as it can recognize. Input with no diff markers at all
// yields an empty file list.
//
// The package also provides an aggregate summary view over parsed files for
// reporting layers (CLI output, annotations, chat summaries).
package diff
