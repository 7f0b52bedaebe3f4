package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridepool",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridepool",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// Routing provider metrics
	routingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridepool",
		Subsystem: "routing",
		Name:      "requests_total",
		Help:      "Routing provider calls by operation and outcome",
	}, []string{"op", "outcome"})

	routingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridepool",
		Subsystem: "routing",
		Name:      "request_duration_seconds",
		Help:      "Routing provider call latency, retries included",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"op"})

	routingRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridepool",
		Subsystem: "routing",
		Name:      "retries_total",
		Help:      "Routing provider attempts that were retried",
	}, []string{"op"})

	// Cache metrics
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridepool",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Routing cache lookups by cache and result",
	}, []string{"cache", "result"})

	// Planner metrics
	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridepool",
		Subsystem: "planner",
		Name:      "plans_total",
		Help:      "Trip plans computed by outcome",
	}, []string{"outcome"})

	planPassengers = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ridepool",
		Subsystem: "planner",
		Name:      "passengers_per_plan",
		Help:      "Passengers per successfully planned trip",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})
)

// ObserveRoutingCall records a completed routing provider call.
func ObserveRoutingCall(op string, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	routingRequests.WithLabelValues(op, outcome).Inc()
	routingDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RoutingRetry records a retried routing attempt.
func RoutingRetry(op string) {
	routingRetries.WithLabelValues(op).Inc()
}

// CacheHit records a cache hit.
func CacheHit(cache string) {
	cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss.
func CacheMiss(cache string) {
	cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// ObservePlan records a planner outcome.
func ObservePlan(passengers int, err error) {
	if err != nil {
		plansTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	plansTotal.WithLabelValues(OutcomeSuccess).Inc()
	planPassengers.Observe(float64(passengers))
}
