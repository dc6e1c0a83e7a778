// Package metrics holds the Prometheus counters for a pipeline run.
//
// A CLI run is short lived, so nothing is served over HTTP. The registry is
// written once at the end of the command in the text exposition format for
// the node-exporter textfile collector. Every method is safe on a nil
// *Metrics, which is what commands use when no metrics file is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wikisync"

// Metrics owns a private registry so repeated construction in tests never
// collides with the global one.
type Metrics struct {
	registry *prometheus.Registry

	// FetchPages counts pages by fetch outcome (fetched, cached, skipped, failed).
	FetchPages *prometheus.CounterVec

	// RetryAttempts counts backoff waits by reason (rate_limited, server_error, network, other).
	RetryAttempts *prometheus.CounterVec

	// ValidationIssues counts validation findings by severity.
	ValidationIssues *prometheus.CounterVec

	// AuditDiscrepancies counts audit findings by severity.
	AuditDiscrepancies *prometheus.CounterVec

	// StageDuration measures stage wall time.
	StageDuration *prometheus.HistogramVec

	// StageFailures counts stages that returned an error.
	StageFailures *prometheus.CounterVec
}

// New creates a Metrics with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchPages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_pages_total",
			Help:      "Wiki pages processed by fetch outcome",
		}, []string{"outcome"}),
		RetryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Retries of remote calls by failure reason",
		}, []string{"reason"}),
		ValidationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Validation issues by severity",
		}, []string{"severity"}),
		AuditDiscrepancies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_discrepancies_total",
			Help:      "Audit discrepancies by severity",
		}, []string{"severity"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that failed",
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFetch counts one page outcome.
func (m *Metrics) RecordFetch(outcome string) {
	if m == nil {
		return
	}
	m.FetchPages.WithLabelValues(outcome).Inc()
}

// RecordRetry counts one backoff wait.
func (m *Metrics) RecordRetry(reason string) {
	if m == nil {
		return
	}
	m.RetryAttempts.WithLabelValues(reason).Inc()
}

// RecordValidationIssues adds n issues of the given severity.
func (m *Metrics) RecordValidationIssues(severity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ValidationIssues.WithLabelValues(severity).Add(float64(n))
}

// RecordAuditDiscrepancies adds n discrepancies of the given severity.
func (m *Metrics) RecordAuditDiscrepancies(severity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AuditDiscrepancies.WithLabelValues(severity).Add(float64(n))
}

// ObserveStage records a stage duration and, when err is non-nil, a failure.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// A nil Metrics or an empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
