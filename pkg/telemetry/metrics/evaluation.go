package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every saturn metric.
const namespace = "saturn"

// EvaluationMetrics tracks diff parsing and policy evaluation.
//
// Metrics:
//   - saturn_evaluations_total: Total evaluations by decision
//   - saturn_evaluation_duration_seconds: Evaluation duration
//   - saturn_violations_total: Violations by rule and severity
//   - saturn_files_evaluated_total: Files seen by the evaluator
//   - saturn_parse_duration_seconds: Diff parse duration
type EvaluationMetrics struct {
	evaluationsTotal    *prometheus.CounterVec
	evaluationDuration  prometheus.Histogram
	violationsTotal     *prometheus.CounterVec
	filesEvaluatedTotal prometheus.Counter
	parseDuration       prometheus.Histogram
}

// NewEvaluationMetrics creates and registers evaluation metrics with
// the provided registry.
func NewEvaluationMetrics(registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"decision"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of policy evaluation in seconds",
				// Evaluations are regex-bound and should stay under 100ms.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of rule violations",
			},
			[]string{"rule_id", "severity"},
		),

		filesEvaluatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_evaluated_total",
				Help:      "Total number of changed files evaluated",
			},
		),

		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Duration of unified diff parsing in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.violationsTotal,
		em.filesEvaluatedTotal,
		em.parseDuration,
	)

	return em
}

// RecordEvaluation records one completed evaluation.
func (em *EvaluationMetrics) RecordEvaluation(decision string, fileCount int, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(decision).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
	em.filesEvaluatedTotal.Add(float64(fileCount))
}

// RecordViolation records a single rule violation.
func (em *EvaluationMetrics) RecordViolation(ruleID, severity string) {
	em.violationsTotal.WithLabelValues(ruleID, severity).Inc()
}

// RecordParse records the duration of one diff parse.
func (em *EvaluationMetrics) RecordParse(duration time.Duration) {
	em.parseDuration.Observe(duration.Seconds())
}
