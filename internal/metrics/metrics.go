// Package metrics holds the Prometheus collectors exported by the API.
// Collectors are usable before Init; Init registers them with the default
// registry so Handler can serve them.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by route, method and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration observes request latency in seconds by route and method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ProductCacheLookups counts product lookups by outcome: hit, miss, stale.
	ProductCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_cache_lookups_total",
			Help: "Product cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// ProductRefreshes counts refresh attempts against the external API by result.
	ProductRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_refreshes_total",
			Help: "Product refreshes from the external API by result",
		},
		[]string{"result"},
	)

	// ExternalRequests counts calls that reached the external product API by status class.
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_external_requests_total",
			Help: "Requests sent to the external product API",
		},
		[]string{"status"},
	)

	// CircuitBreakerState reports the current breaker state (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Current circuit breaker state",
		},
		[]string{"breaker"},
	)

	// CircuitBreakerStateChanges counts breaker transitions.
	CircuitBreakerStateChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default Prometheus registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			ProductCacheLookups,
			ProductRefreshes,
			ExternalRequests,
			CircuitBreakerState,
			CircuitBreakerStateChanges,
		)
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
