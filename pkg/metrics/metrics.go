// Package metrics exposes Prometheus instrumentation for the billing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Renewal outcome labels.
const (
	OutcomeRenewed       = "renewed"
	OutcomeNotEligible   = "not_eligible"
	OutcomeSuppressed    = "suppressed"
	OutcomeLockHeld      = "lock_held"
	OutcomeNeedsAction   = "needs_action"
	OutcomeChargeFailed  = "charge_failed"
	OutcomeTimedOut      = "timed_out"
	OutcomeInternalError = "internal_error"
)

// RenewalMetrics records renewal attempt outcomes and latency.
type RenewalMetrics struct {
	attempts *prometheus.CounterVec
	duration prometheus.Histogram
	repairs  prometheus.Counter
}

// NewRenewalMetrics registers the renewal metrics on the provided registerer.
func NewRenewalMetrics(reg prometheus.Registerer) *RenewalMetrics {
	if reg == nil {
		return &RenewalMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "renewal_attempts_total",
		Help: "Subscription renewal attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "renewal_duration_seconds",
		Help:    "End-to-end duration of renewal attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	repairs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_repairs_total",
		Help: "Legacy payment ledgers normalized during writes.",
	})
	reg.MustRegister(attempts, duration, repairs)
	return &RenewalMetrics{
		attempts: attempts,
		duration: duration,
		repairs:  repairs,
	}
}

// ObserveAttempt records one renewal attempt with its outcome and duration.
func (m *RenewalMetrics) ObserveAttempt(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if m.attempts != nil {
		m.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
	}
	if m.duration != nil {
		m.duration.Observe(duration.Seconds())
	}
}

// IncLedgerRepair counts a legacy ledger normalization.
func (m *RenewalMetrics) IncLedgerRepair() {
	if m == nil || m.repairs == nil {
		return
	}
	m.repairs.Inc()
}

// JobMetrics records metadata for scheduled worker jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewJobMetrics registers the worker job metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of worker jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful worker job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed worker job executions.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &JobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named job.
func (c *JobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *JobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (c *JobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
