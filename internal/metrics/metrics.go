package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "climate_api"

// Metrics holds the Prometheus collectors for the HTTP surface and the
// aggregation queries behind it.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration  *prometheus.HistogramVec // labels: method, route
	HTTPRequestsInFlight prometheus.Gauge
	RateLimitDenied      prometheus.Counter

	QueriesTotal  *prometheus.CounterVec   // labels: operation, outcome={success,error}
	QueryDuration *prometheus.HistogramVec // labels: operation
	QueryRows     *prometheus.HistogramVec // labels: operation
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := newUnregistered()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RateLimitDenied,
		m.QueriesTotal,
		m.QueryDuration,
		m.QueryRows,
	)
	return m
}

// NewForTesting returns collectors that are not registered anywhere, so tests
// can create as many as they like.
func NewForTesting() *Metrics {
	return newUnregistered()
}

func newUnregistered() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status class.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		RateLimitDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_denied_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Aggregation queries by operation and outcome.",
		}, []string{"operation", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Aggregation query latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		QueryRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_result_rows",
			Help:      "Entries returned per aggregation query.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 2500, 5000},
		}, []string{"operation"}),
	}
}
