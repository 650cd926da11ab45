// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth operations.
const (
	OpSignup = "signup"
	OpLogin  = "login"
	OpGate   = "gate"
)

// Metrics holds the collectors registered on one registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// AuthOutcomesTotal counts signup, login and gate decisions by outcome
	// ("ok", "invalid_credentials", "duplicate", "missing_token", ...).
	AuthOutcomesTotal *prometheus.CounterVec

	UpstreamRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatekeeper_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatekeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatekeeper_auth_outcomes_total",
				Help: "Authentication decisions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatekeeper_upstream_requests_total",
				Help: "Calls to upstream services by outcome",
			},
			[]string{"upstream", "outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthOutcomesTotal,
		m.UpstreamRequestsTotal,
	)

	return m
}

// ObserveHTTP records one served request. route is the matched route
// template, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) AuthOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) UpstreamOutcome(upstream, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
