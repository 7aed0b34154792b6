package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRenewalMetricsExportsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRenewalMetrics(reg)
	m.ObserveAttempt(OutcomeRenewed, 120*time.Millisecond)
	m.ObserveAttempt(OutcomeSuppressed, 5*time.Millisecond)
	m.IncLedgerRepair()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "renewal_attempts_total", "outcome", OutcomeRenewed); err != nil {
		t.Fatalf("fetch renewed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected renewed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "renewal_attempts_total", "outcome", OutcomeSuppressed); err != nil {
		t.Fatalf("fetch suppressed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected suppressed=1, got %f", got)
	}

	repairs := findMetricFamily(mfs, "ledger_repairs_total")
	if repairs == nil || len(repairs.GetMetric()) == 0 {
		t.Fatal("ledger_repairs_total not exported")
	}
	if got := repairs.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected repairs=1, got %f", got)
	}
}

func TestJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	job := "renewal-sweep"
	m.ObserveDuration(job, 250*time.Millisecond)
	m.IncSuccess(job)
	m.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "job_success", "job", job); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "job_failure", "job", job); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRegistererProducesNoopMetrics(t *testing.T) {
	m := NewRenewalMetrics(nil)
	m.ObserveAttempt(OutcomeRenewed, time.Second)
	m.IncLedgerRepair()
	j := NewJobMetrics(nil)
	j.ObserveDuration("x", time.Second)
	j.IncSuccess("x")
	j.IncFailure("x")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric family %q not found", name)
	}
	for _, m := range mf.GetMetric() {
		if hasLabel(m, label, value) {
			return m.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no %q series with %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric family %q not found", name)
	}
	for _, m := range mf.GetMetric() {
		if hasLabel(m, label, value) {
			return m.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("no %q series with %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func hasLabel(m *dto.Metric, label, value string) bool {
	for _, pair := range m.GetLabel() {
		if pair.GetName() == label && pair.GetValue() == value {
			return true
		}
	}
	return false
}
