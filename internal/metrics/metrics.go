// Package metrics exposes Prometheus collectors for board refreshes and
// user flows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeAborted   = "aborted"
)

// Metrics holds the board's collectors.
type Metrics struct {
	flows           *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		flows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_flows_total",
				Help: "Signup and unregister flows by outcome",
			},
			[]string{"flow", "outcome"},
		),
		refreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_refreshes_total",
				Help: "Catalog refreshes by outcome",
			},
			[]string{"outcome"},
		),
		refreshDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "board_refresh_duration_seconds",
				Help:    "Time to fetch and render the catalog",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "board_sessions_active",
			Help: "Board sessions currently held in memory",
		}),
	}
}

// FlowCompleted counts one finished flow.
func (m *Metrics) FlowCompleted(flow, outcome string) {
	m.flows.WithLabelValues(flow, outcome).Inc()
}

// RefreshObserved counts one refresh and records its latency.
func (m *Metrics) RefreshObserved(outcome string, d time.Duration) {
	m.refreshes.WithLabelValues(outcome).Inc()
	m.refreshDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SessionsActive sets the live session gauge.
func (m *Metrics) SessionsActive(n int) {
	m.sessions.Set(float64(n))
}
