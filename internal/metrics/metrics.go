// Package metrics exposes Prometheus collectors for the request dispatcher.
// Collectors register with the default registry; embedders scrape them with
// promhttp.Handler like any other client_golang metric.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatch Metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wrapblox_request_duration_seconds",
			Help:    "Duration of upstream API round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"api_group", "method"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrapblox_requests_total",
			Help: "Total number of upstream API round trips by status code",
		},
		[]string{"api_group", "method", "status"},
	)

	TransportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrapblox_transport_errors_total",
			Help: "Total number of round trips that failed before a response was received",
		},
		[]string{"api_group"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wrapblox_cache_hits_total",
			Help: "Total number of GET calls answered from the response cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wrapblox_cache_misses_total",
			Help: "Total number of cacheable GET calls that went to the network",
		},
	)

	// CSRF and rate-limit Metrics
	CSRFRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wrapblox_csrf_retries_total",
			Help: "Total number of requests re-sent after acquiring a new CSRF token",
		},
	)

	RateLimitBackoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrapblox_rate_limit_backoffs_total",
			Help: "Total number of 429 responses that triggered a pagination backoff",
		},
		[]string{"api_group"},
	)

	// Circuit breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wrapblox_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrapblox_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordRequest records one completed round trip.
func RecordRequest(apiGroup, method string, status int, duration time.Duration) {
	RequestDuration.WithLabelValues(apiGroup, method).Observe(duration.Seconds())
	RequestsTotal.WithLabelValues(apiGroup, method, strconv.Itoa(status)).Inc()
}

// RecordTransportError records a round trip that produced no response.
func RecordTransportError(apiGroup string) {
	TransportErrors.WithLabelValues(apiGroup).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}
