// Package http provides the operator-facing HTTP surface: health
// checks and Prometheus metrics for the Core's ambient concerns.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics exported across the Core's
// domain surfaces: requests served by this adapter, ledger durability,
// governance mode, policy decisions, alert dispatch, and VFS gating.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	LedgerAppends    *prometheus.CounterVec
	LedgerDropsTotal prometheus.Counter
	GovernanceMode   *prometheus.GaugeVec
	PolicyDecisions  *prometheus.CounterVec
	AlertsDispatched *prometheus.CounterVec
	VFSGateDecisions *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "requests_total",
				Help:      "Total number of admin API requests processed",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "core",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LedgerAppends: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "ledger_appends_total",
				Help:      "Total ledger appends, by chain and outcome",
			},
			[]string{"chain_id", "outcome"}, // outcome=ok/error
		),
		LedgerDropsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "ledger_drops_total",
				Help:      "Total audit envelopes dropped from the async ledger queue under backpressure",
			},
		),
		GovernanceMode: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "core",
				Name:      "governance_mode",
				Help:      "1 if the governance engine is currently in the labeled mode, else 0",
			},
			[]string{"mode"},
		),
		PolicyDecisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "policy_decisions_total",
				Help:      "Total policy evaluations, by decision",
			},
			[]string{"decision"}, // decision=allow/deny/require_stepup
		),
		AlertsDispatched: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "alerts_dispatched_total",
				Help:      "Total alert notifications dispatched, by environment and status",
			},
			[]string{"environment", "status"},
		),
		VFSGateDecisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "core",
				Name:      "vfs_gate_decisions_total",
				Help:      "Total VFS write-gate decisions, by outcome",
			},
			[]string{"outcome"}, // outcome=allow/deny/conflict/governance_block
		),
	}
}
