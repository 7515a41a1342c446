// Package audit records evaluation outcomes for later inspection. Each
// evaluation produces one Record holding the decision, change-set
// totals and the violation list. Records are written asynchronously so
// evaluation never blocks on storage, and storage backends are
// pluggable through the Storage interface.
package audit
