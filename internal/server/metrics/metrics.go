// Package metrics holds the Prometheus collectors for account flows.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Flow names used as label values.
const (
	FlowRegister = "register"
	FlowLogin    = "login"
	FlowMe       = "me"
)

// Metrics contains the counters and histograms recorded by the service
// layer. A nil *Metrics records nothing.
type Metrics struct {
	FlowOutcomes *prometheus.CounterVec
	FlowDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlowOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_flow_outcomes_total",
				Help: "Total number of account flow results by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		FlowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_flow_duration_seconds",
				Help:    "Account flow latency, including password hashing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
	}

	reg.MustRegister(m.FlowOutcomes)
	reg.MustRegister(m.FlowDuration)

	return m
}

// Observe records one finished flow.
func (m *Metrics) Observe(flow, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FlowOutcomes.WithLabelValues(flow, outcome).Inc()
	m.FlowDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

// NewRegistry returns a private registry with the Go and process collectors,
// keeping the global one clean.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler exposes reg in the Prometheus text or OpenMetrics format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
