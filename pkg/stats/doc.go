// Package stats maintains persistent per-rule hit counters across
// saturn invocations. Counters answer "which rules actually fire" over
// time, which informs catalogue tuning in a way single-run output
// cannot.
package stats
