// Package metrics exposes the Prometheus counters and histograms for
// request counts, per-engine latency, and truncation events. Only the
// request series are recorded: the HTTP middleware chain calls
// ObserveRequest, while ObserveEngine, RecordTruncation and
// RecordStrategyFailure have no callers in the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route, method, and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomdetect_http_requests_total",
		Help: "Total HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "status"})

	// RequestDuration records request latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roomdetect_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labeled by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// EngineDuration records per-engine latency within the orchestrator.
	EngineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roomdetect_engine_duration_seconds",
		Help:    "Detection engine latency in seconds, labeled by engine name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})

	// TruncatedSearches counts cycle/component searches that hit a DoS cap.
	TruncatedSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomdetect_truncated_searches_total",
		Help: "Detection searches that were truncated by a DoS-protection cap, labeled by engine.",
	}, []string{"engine"})

	// StrategyFailures counts per-strategy sub-engine failures.
	StrategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomdetect_strategy_failures_total",
		Help: "Sub-engine failures within the orchestrator, labeled by strategy.",
	}, []string{"strategy"})
)

// ObserveRequest records one HTTP request's outcome.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveEngine records one engine invocation's latency.
func ObserveEngine(engine string, elapsed time.Duration) {
	EngineDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// RecordTruncation marks that engine's search hit a DoS-protection cap.
func RecordTruncation(engine string) {
	TruncatedSearches.WithLabelValues(engine).Inc()
}

// RecordStrategyFailure marks a sub-engine failure under strategy.
func RecordStrategyFailure(strategy string) {
	StrategyFailures.WithLabelValues(strategy).Inc()
}
