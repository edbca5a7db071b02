package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phonebook"

// Worker outcomes recorded per consumed message.
const (
	OutcomeCompleted     = "completed"
	OutcomeMissingReport = "missing_report"
	OutcomeMalformed     = "malformed"
	OutcomeFailed        = "failed"
)

// Metrics owns a private registry so tests and multiple apps in one process
// never collide on the default one. All methods are safe on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInflight prometheus.Gauge

	workerMessages   *prometheus.CounterVec
	workerDuration   prometheus.Histogram
	workerState      *prometheus.GaugeVec
	workerReconnects prometheus.Counter
	reportLocations  prometheus.Histogram
	reportsRequested prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		workerMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report_worker",
			Name:      "messages_total",
			Help:      "Report request messages consumed, by outcome.",
		}, []string{"outcome"}),
		workerDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report_worker",
			Name:      "processing_duration_seconds",
			Help:      "Time spent generating one report.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		workerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report_worker",
			Name:      "state",
			Help:      "1 for the consumer loop's current state, 0 otherwise.",
		}, []string{"state"}),
		workerReconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report_worker",
			Name:      "reconnects_total",
			Help:      "Times the consumer loop went back to Disconnected.",
		}),
		reportLocations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report_worker",
			Name:      "report_locations",
			Help:      "Number of locations in each generated report.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		reportsRequested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "requested_total",
			Help:      "Reports requested through the API.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RegisterDB exposes connection pool stats for db under dbName.
func (m *Metrics) RegisterDB(db *sql.DB, dbName string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.reg.Register(collectors.NewDBStatsCollector(db, dbName))
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.httpInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.httpInflight.Dec()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveMessage(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.workerMessages.WithLabelValues(outcome).Inc()
	if outcome != OutcomeMalformed {
		m.workerDuration.Observe(dur.Seconds())
	}
}

func (m *Metrics) ObserveReportLocations(n int) {
	if m == nil {
		return
	}
	m.reportLocations.Observe(float64(n))
}

// SetWorkerState flips the state gauge so exactly one of states reads 1.
func (m *Metrics) SetWorkerState(current string, states ...string) {
	if m == nil {
		return
	}
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		m.workerState.WithLabelValues(s).Set(v)
	}
}

func (m *Metrics) IncReconnect() {
	if m == nil {
		return
	}
	m.workerReconnects.Inc()
}

func (m *Metrics) IncReportsRequested() {
	if m == nil {
		return
	}
	m.reportsRequested.Inc()
}
