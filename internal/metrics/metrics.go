// Package metrics exposes inventory and HTTP counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assettrack"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted    prometheus.Counter
	ScansRecorded      prometheus.Counter
	Reconciliations    prometheus.Counter
	LastFound          prometheus.Gauge
	LastMissing        prometheus.Gauge
	LastUnmatched      prometheus.Gauge
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Inventory sessions started.",
		}),
		ScansRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_recorded_total",
			Help:      "RFID scans appended to a session.",
		}),
		Reconciliations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Sessions reconciled against the catalog.",
		}),
		LastFound: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reconciliation_found_assets",
			Help:      "Assets found by the most recent reconciliation.",
		}),
		LastMissing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reconciliation_missing_assets",
			Help:      "Assets missing in the most recent reconciliation.",
		}),
		LastUnmatched: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reconciliation_unmatched_codes",
			Help:      "Distinct scanned codes that matched no asset in the most recent reconciliation.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		HTTPRequestSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReconciliation records the outcome of one reconciliation.
func (m *Metrics) ObserveReconciliation(found, missing, unmatched int) {
	if m == nil {
		return
	}
	m.Reconciliations.Inc()
	m.LastFound.Set(float64(found))
	m.LastMissing.Set(float64(missing))
	m.LastUnmatched.Set(float64(unmatched))
}

// SessionStarted counts a new session.
func (m *Metrics) SessionStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

// ScanRecorded counts an appended scan.
func (m *Metrics) ScanRecorded() {
	if m != nil {
		m.ScansRecorded.Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, code).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, code).Observe(elapsed.Seconds())
}
