// Package telemetry provides observability for saturn: structured
// logging and Prometheus metrics. Subpackages are independent; callers
// wire only what they need.
package telemetry
