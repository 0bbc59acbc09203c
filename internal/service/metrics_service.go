package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the console.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	bulkRows         *prometheus.CounterVec
	layoutFallbacks  *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	upstreamCalls    uint64
	upstreamFailures uint64
}

// MetricsSnapshot summarises counters for diagnostics.
type MetricsSnapshot struct {
	UpstreamCalls    uint64    `json:"upstreamCalls"`
	UpstreamFailures uint64    `json:"upstreamFailures"`
	Goroutines       int       `json:"goroutines"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// NewMetricsService registers the console collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registration_api_call_duration_seconds",
		Help:    "Duration of calls to the remote registration API",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})

	bulkRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_reject_rows_total",
		Help: "Rows processed by bulk rejection, by outcome",
	}, []string{"outcome"})

	layoutFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "column_layout_fallbacks_total",
		Help: "Column layout loads that fell back to defaults, by reason",
	}, []string{"reason"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_sessions_active",
		Help: "Review sessions currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, bulkRows, layoutFallbacks, activeSessions, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		bulkRows:         bulkRows,
		layoutFallbacks:  layoutFallbacks,
		activeSessions:   activeSessions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpstreamCall records one remote registration API call.
func (m *MetricsService) ObserveUpstreamCall(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(endpoint, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.upstreamCalls, 1)
	if outcome != "success" {
		atomic.AddUint64(&m.upstreamFailures, 1)
	}
}

// RecordBulkOutcome counts succeeded and failed rows of one bulk rejection.
func (m *MetricsService) RecordBulkOutcome(succeeded, failed int) {
	if m == nil {
		return
	}
	m.bulkRows.WithLabelValues("succeeded").Add(float64(succeeded))
	m.bulkRows.WithLabelValues("failed").Add(float64(failed))
}

// RecordLayoutFallback counts a column layout load that used defaults.
func (m *MetricsService) RecordLayoutFallback(reason string) {
	if m == nil {
		return
	}
	m.layoutFallbacks.WithLabelValues(reason).Inc()
}

// SetActiveSessions publishes the number of live sessions.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		UpstreamCalls:    atomic.LoadUint64(&m.upstreamCalls),
		UpstreamFailures: atomic.LoadUint64(&m.upstreamFailures),
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
}
