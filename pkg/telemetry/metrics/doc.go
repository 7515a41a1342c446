// Package metrics defines Prometheus instrumentation for diff parsing
// and policy evaluation. Metrics are registered against an injected
// registry so tests and embedders stay isolated from the global one.
package metrics
