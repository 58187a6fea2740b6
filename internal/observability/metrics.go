package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contacts_directory"

// Token issue outcomes.
const (
	TokenOutcomeIssued   = "issued"
	TokenOutcomeCached   = "cached"
	TokenOutcomeRejected = "rejected"
	TokenOutcomeError    = "error"
)

// Metrics holds the service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	tokenIssues     *prometheus.CounterVec
	cacheEntries    prometheus.Gauge
	cacheSwept      prometheus.Counter
}

// NewMetrics registers collectors, including the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		tokenIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_issue_total",
			Help:      "Token issue attempts by outcome.",
		}, []string{"outcome"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_cache_entries",
			Help:      "Entries held by the in-memory token cache after the last sweep.",
		}),
		cacheSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_swept_total",
			Help:      "Expired token cache entries removed by the sweeper.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.tokenIssues,
		m.cacheEntries,
		m.cacheSwept,
	)
	return m
}

// RecordRequest counts a finished request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordTokenIssue counts a token issue attempt by outcome.
func (m *Metrics) RecordTokenIssue(outcome string) {
	if m == nil {
		return
	}
	m.tokenIssues.WithLabelValues(outcome).Inc()
}

// RecordCacheSweep records the entries removed by a sweep and the remaining size.
func (m *Metrics) RecordCacheSweep(removed, remaining int) {
	if m == nil {
		return
	}
	m.cacheSwept.Add(float64(removed))
	m.cacheEntries.Set(float64(remaining))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
