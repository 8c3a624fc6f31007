// Package monitor tracks request counts and uptime and exposes Prometheus metrics.
// All methods are safe on a nil *Monitor.
package monitor

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FXSignal/internal/model"
)

// Stats is the service summary reported by the health endpoint.
type Stats struct {
	UptimeSeconds     int64   `json:"uptime_seconds"`
	TotalRequests     uint64  `json:"total_requests"`
	RequestsPerMinute float64 `json:"requests_per_minute"`
}

// Monitor holds the service counters and the Prometheus registry they are exported from.
type Monitor struct {
	start    time.Time
	requests atomic.Uint64
	now      func() time.Time

	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	signalsTotal    *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
}

// New creates a Monitor with its own registry.
func New() *Monitor {
	m := &Monitor{
		start:    time.Now(),
		now:      time.Now,
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_http_requests_total",
			Help: "HTTP requests by route",
		}, []string{"route"}),
		signalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_signals_total",
			Help: "Generated signals by instrument and direction",
		}, []string{"instrument", "direction"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_fetch_failures_total",
			Help: "Failed price history fetches by instrument",
		}, []string{"instrument"}),
		analysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignal_analysis_duration_seconds",
			Help:    "Fetch plus signal generation latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.httpRequests, m.signalsTotal, m.fetchFailures, m.analysisSeconds)
	return m
}

// TrackRequest counts one HTTP request.
func (m *Monitor) TrackRequest(route string) {
	if m == nil {
		return
	}
	m.requests.Add(1)
	m.httpRequests.WithLabelValues(route).Inc()
}

// SignalGenerated records a generated signal and how long producing it took.
func (m *Monitor) SignalGenerated(instrument string, dir model.Direction, took time.Duration) {
	if m == nil {
		return
	}
	m.signalsTotal.WithLabelValues(instrument, string(dir)).Inc()
	m.analysisSeconds.Observe(took.Seconds())
}

// FetchFailed counts a failed history fetch.
func (m *Monitor) FetchFailed(instrument string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(instrument).Inc()
}

// Stats returns uptime and request rate. The rate uses at least one minute of uptime.
func (m *Monitor) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	uptime := m.now().Sub(m.start)
	minutes := uptime.Minutes()
	if minutes < 1 {
		minutes = 1
	}
	total := m.requests.Load()
	return Stats{
		UptimeSeconds:     int64(uptime.Round(time.Second).Seconds()),
		TotalRequests:     total,
		RequestsPerMinute: float64(total) / minutes,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
