// Package observability provides Prometheus metrics for dashboard runs.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the pipeline's Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	recordsLoaded prometheus.Counter
	parseWarnings prometheus.Counter
	httpRequests  *prometheus.CounterVec
	exportsTotal  *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewMetrics creates the metrics and registers them, plus the Go and process
// collectors, on a fresh registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.initMetrics()

	if err := m.registry.Register(m); err != nil {
		return nil, err
	}
	if err := m.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := m.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_dashboard_runs_total",
			Help: "Total number of dashboard runs by final status",
		},
		[]string{"status"},
	)

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boxoffice_stage_duration_seconds",
			Help:    "Time taken by each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"stage"},
	)

	m.recordsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_records_loaded_total",
		Help: "Total number of rows read from the source table",
	})

	m.parseWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_parse_warnings_total",
		Help: "Total number of cells coerced while loading",
	})

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_http_requests_total",
			Help: "Total number of API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_exports_total",
			Help: "Total number of export targets written",
		},
		[]string{"format", "status"},
	)

	m.collectors = []prometheus.Collector{
		m.runsTotal,
		m.stageDuration,
		m.recordsLoaded,
		m.parseWarnings,
		m.httpRequests,
		m.exportsTotal,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun counts a finished run.
func (m *Metrics) ObserveRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// AddRecordsLoaded counts rows read from the source.
func (m *Metrics) AddRecordsLoaded(n int) {
	m.recordsLoaded.Add(float64(n))
}

// AddParseWarnings counts coerced cells.
func (m *Metrics) AddParseWarnings(n int) {
	m.parseWarnings.Add(float64(n))
}

// ObserveExport counts one export target.
func (m *Metrics) ObserveExport(format string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.exportsTotal.WithLabelValues(format, status).Inc()
}

// ObserveRequest counts one API request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
