// Package metrics exposes Prometheus metrics for the HTTP API, the report
// computations and the database pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics configuration.
type Config struct {
	Namespace string
	// RuntimeCollectors registers Go runtime and process collectors.
	RuntimeCollectors bool
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Namespace:         "supplyscope",
		RuntimeCollectors: true,
	}
}

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	ReportDuration    *prometheus.HistogramVec
	ReportItems       *prometheus.GaugeVec
	ReportFailures    *prometheus.CounterVec
	ReportUnavailable *prometheus.CounterVec

	DBConnections *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	if cfg.RuntimeCollectors {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent computing a cross-supplier report",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"report"},
	)

	m.ReportItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "report_items",
			Help:      "Number of items in the last computed report",
		},
		[]string{"report"},
	)

	m.ReportFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "report_supplier_failures_total",
			Help:      "Suppliers skipped by a report because of invalid data",
		},
		[]string{"report"},
	)

	m.ReportUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "report_unavailable_total",
			Help:      "Report runs that could not load their source data",
		},
		[]string{"report"},
	)

	m.DBConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "db_connections",
			Help:      "Database pool connections by state",
		},
		[]string{"state"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ReportDuration,
		m.ReportItems,
		m.ReportFailures,
		m.ReportUnavailable,
		m.DBConnections,
	)

	return m
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge.
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge.
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// ObserveReport implements procurement.Recorder.
func (m *Metrics) ObserveReport(report string, elapsed time.Duration, items, failures int, unavailable bool) {
	m.ReportDuration.WithLabelValues(report).Observe(elapsed.Seconds())
	if unavailable {
		m.ReportUnavailable.WithLabelValues(report).Inc()
		return
	}
	m.ReportItems.WithLabelValues(report).Set(float64(items))
	m.ReportFailures.WithLabelValues(report).Add(float64(failures))
}

// SetPoolStats publishes database pool connection counts.
func (m *Metrics) SetPoolStats(total, acquired, idle int32) {
	m.DBConnections.WithLabelValues("total").Set(float64(total))
	m.DBConnections.WithLabelValues("acquired").Set(float64(acquired))
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
}
