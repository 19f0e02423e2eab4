package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestSink(t *testing.T) (*PrometheusSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	return sink, reg
}

func getCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func getGaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if m.GetGauge() != nil {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func getGaugeVecValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if matchLabels(m.GetLabel(), labels) {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}

func TestPrometheusSink_Registration(t *testing.T) {
	// Should not panic or error with a fresh registry.
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	if sink == nil {
		t.Fatal("NewPrometheusSink returned nil")
	}
}

func TestPrometheusSink_PollStarted(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.PollStarted()
	sink.PollStarted()

	val := getCounterValue(t, reg, "rspamdmon_poller_cycles_total")
	if val != 2 {
		t.Errorf("cycles_total = %v, want 2", val)
	}
}

func TestPrometheusSink_PollCompleted_WithError(t *testing.T) {
	sink, reg := newTestSink(t)

	// No error
	sink.PollCompleted(100*time.Millisecond, nil)
	errCount := getCounterValue(t, reg, "rspamdmon_poller_errors_total")
	if errCount != 0 {
		t.Errorf("errors_total = %v after success, want 0", errCount)
	}

	// With error
	sink.PollCompleted(100*time.Millisecond, errors.New("connection refused"))
	errCount = getCounterValue(t, reg, "rspamdmon_poller_errors_total")
	if errCount != 1 {
		t.Errorf("errors_total = %v after error, want 1", errCount)
	}
}

func TestPrometheusSink_ConsecutiveFailures(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.ConsecutiveFailures(3)
	val := getGaugeValue(t, reg, "rspamdmon_poller_consecutive_failures")
	if val != 3 {
		t.Errorf("consecutive_failures = %v, want 3", val)
	}

	sink.ConsecutiveFailures(0)
	val = getGaugeValue(t, reg, "rspamdmon_poller_consecutive_failures")
	if val != 0 {
		t.Errorf("consecutive_failures = %v after reset, want 0", val)
	}
}

func TestPrometheusSink_SeriesLabels(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.SeriesPoint("rejected", 2.5)
	sink.SeriesPoint("clean", 10)
	sink.SeriesLength("rejected", 42)

	val := getGaugeVecValue(t, reg, "rspamdmon_series_value",
		map[string]string{"metric": "rejected"})
	if val != 2.5 {
		t.Errorf("series_value{metric=rejected} = %v, want 2.5", val)
	}

	val = getGaugeVecValue(t, reg, "rspamdmon_series_value",
		map[string]string{"metric": "clean"})
	if val != 10 {
		t.Errorf("series_value{metric=clean} = %v, want 10", val)
	}

	val = getGaugeVecValue(t, reg, "rspamdmon_series_points",
		map[string]string{"metric": "rejected"})
	if val != 42 {
		t.Errorf("series_points{metric=rejected} = %v, want 42", val)
	}
}

func TestPrometheusSink_DuplicateRegistration_NoPanic(t *testing.T) {
	// Registering metrics twice with the same registry should not panic.
	// The second registration will fail, but should be handled gracefully.
	reg := prometheus.NewRegistry()

	sink1 := NewPrometheusSink(reg)
	if sink1 == nil {
		t.Fatal("first NewPrometheusSink returned nil")
	}

	// Second registration will fail for all metrics, but should not panic.
	sink2 := NewPrometheusSink(reg)
	if sink2 == nil {
		t.Fatal("second NewPrometheusSink returned nil")
	}
}

// Verify PrometheusSink implements Sink interface.
var _ Sink = (*PrometheusSink)(nil)
