package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	ActionsRateLimited  prometheus.Counter

	// Source Metrics
	SourceQueriesTotal  *prometheus.CounterVec
	SourceQueryDuration *prometheus.HistogramVec

	// Store Metrics
	StoreOperationsTotal *prometheus.CounterVec
	StoreGeneration      prometheus.Gauge
}

// New creates all metrics and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		ActionsRateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "view_actions_rate_limited_total",
				Help: "Total number of view actions rejected by the rate limiter",
			},
		),

		SourceQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "country_source_queries_total",
				Help: "Total number of country source queries",
			},
			[]string{"source", "operation", "status"},
		),

		SourceQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "country_source_query_duration_seconds",
				Help:    "Country source query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "operation"},
		),

		StoreOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "country_store_operations_total",
				Help: "Country store operations by outcome (ready, failed, superseded)",
			},
			[]string{"operation", "outcome"},
		),

		StoreGeneration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "country_store_request_generation",
				Help: "Generation of the most recently issued fetch",
			},
		),
	}
}
