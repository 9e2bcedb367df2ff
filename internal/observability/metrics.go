package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service. All methods are safe on
// a nil receiver so components can run without metrics in tests.
type Metrics struct {
	gatherer        prometheus.Gatherer
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	voteToggles     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	purged          prometheus.Counter
	sweepRuns       *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Passing a fresh registry keeps tests
// isolated from the process-wide default.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaints_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_errors_total",
			Help: "Error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		voteToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_vote_toggles_total",
			Help: "Vote toggle attempts by outcome",
		}, []string{"outcome"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_lifecycle_transitions_total",
			Help: "Committed lifecycle transitions by operation and target status",
		}, []string{"operation", "status"}),
		purged: factory.NewCounter(prometheus.CounterOpts{
			Name: "complaints_purged_total",
			Help: "Withdrawn complaints permanently deleted by the retention sweeper",
		}),
		sweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_retention_sweeps_total",
			Help: "Retention sweep runs by result",
		}, []string{"result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(route, method, code).Inc()
}

// RecordVote counts a toggle attempt. outcome is "liked", "unliked" or an error code.
func (m *Metrics) RecordVote(outcome string) {
	if m == nil {
		return
	}
	m.voteToggles.WithLabelValues(outcome).Inc()
}

// RecordTransition counts a committed lifecycle change.
func (m *Metrics) RecordTransition(operation, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, status).Inc()
}

// RecordSweep counts one retention sweep and the rows it removed.
func (m *Metrics) RecordSweep(purged int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sweepRuns.WithLabelValues("error").Inc()
		return
	}
	m.sweepRuns.WithLabelValues("ok").Inc()
	m.purged.Add(float64(purged))
}
