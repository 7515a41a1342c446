// Package gitdiff produces unified diff text from a local git
// repository, either between two revisions or between HEAD and the
// working tree. It is a thin acquisition layer: the output feeds the
// diff parser, and the evaluation core never depends on this package.
//
// Remote operations and authentication are out of scope; the
// repository must already exist on disk.
package gitdiff
