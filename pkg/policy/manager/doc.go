// Package manager provides pure data operations over policy documents:
// construction, loading, structural validation, merging and export.
//
// The manager performs no evaluation. Loading is the one place the core
// raises on bad input, since policy documents are caller-supplied
// configuration rather than diff content; validation instead reports a
// list of structural problems without failing.
package manager
