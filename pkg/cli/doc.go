// Package cli provides shared helpers for saturn commands: output
// formatting (text and JSON) and command error types.
package cli
