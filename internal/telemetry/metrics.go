// Package telemetry holds the Prometheus metrics served at GET /metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the service's metric set on a private registry that also
// carries the standard process and Go runtime collectors.
type Metrics struct {
	registry *prometheus.Registry

	// AlertsTotal counts alerts emitted, labeled by type and severity.
	AlertsTotal *prometheus.CounterVec
	// EventsIngested counts accepted events, labeled by source (camera|pos).
	EventsIngested *prometheus.CounterVec
	// NotificationFailures counts deliveries whose retry budget was
	// exhausted, labeled by sink.
	NotificationFailures *prometheus.CounterVec
}

// NewMetrics builds and registers the metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		registry: reg,
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "security_alerts_total",
			Help: "Alerts emitted by the correlation engine.",
		}, []string{"type", "severity"}),
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "security_events_ingested_total",
			Help: "Events accepted for correlation.",
		}, []string{"source"}),
		NotificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "security_notification_failures_total",
			Help: "Outbound alert deliveries that exhausted their retry budget.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.AlertsTotal, m.EventsIngested, m.NotificationFailures)
	return m
}

// Handler returns the Prometheus exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
