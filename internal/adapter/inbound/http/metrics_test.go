package http

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal not initialized")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration not initialized")
	}
	if m.LedgerAppends == nil {
		t.Error("LedgerAppends not initialized")
	}
	if m.LedgerDropsTotal == nil {
		t.Error("LedgerDropsTotal not initialized")
	}
	if m.GovernanceMode == nil {
		t.Error("GovernanceMode not initialized")
	}
	if m.PolicyDecisions == nil {
		t.Error("PolicyDecisions not initialized")
	}
	if m.AlertsDispatched == nil {
		t.Error("AlertsDispatched not initialized")
	}
	if m.VFSGateDecisions == nil {
		t.Error("VFSGateDecisions not initialized")
	}
}

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RequestsTotal.WithLabelValues("POST", "ok").Inc()
	count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "ok"))
	if count != 1 {
		t.Errorf("RequestsTotal = %v, want 1", count)
	}

	m.PolicyDecisions.WithLabelValues("allow").Inc()
	if got := testutil.ToFloat64(m.PolicyDecisions.WithLabelValues("allow")); got != 1 {
		t.Errorf("PolicyDecisions = %v, want 1", got)
	}

	m.GovernanceMode.WithLabelValues("NORMAL").Set(1)
	if got := testutil.ToFloat64(m.GovernanceMode.WithLabelValues("NORMAL")); got != 1 {
		t.Errorf("GovernanceMode = %v, want 1", got)
	}

	m.RequestDuration.WithLabelValues("POST").Observe(0.1)
	gathered, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range gathered {
		if strings.Contains(mf.GetName(), "request_duration") {
			found = true
			break
		}
	}
	if !found {
		t.Error("request_duration histogram not found in gathered metrics")
	}
}
