// Package logging configures the process-wide structured logger on top
// of log/slog. Output format, level and destination are configurable;
// the zero Config produces an info-level text logger on stderr, which
// keeps stdout free for command output.
package logging
