package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the platform API layer.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	apiErrors       *prometheus.CounterVec
	retries         *prometheus.CounterVec
	dedupShared     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	pollAttempts    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quark_request_duration_seconds",
				Help:    "Duration of backend API operations, retries included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		apiErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_api_errors_total",
				Help: "Normalized errors surfaced to callers, by code.",
			},
			[]string{"code"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_retries_total",
				Help: "Retry attempts issued after a transient failure.",
			},
			[]string{"operation"},
		),
		dedupShared: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_dedup_shared_total",
				Help: "Calls that were served by an already in-flight identical request.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		pollAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quark_poll_attempts_total",
				Help: "Status fetches issued by assessment polling, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrAPIError increments the normalized error counter.
func (m *Metrics) IncrAPIError(code string) {
	m.apiErrors.WithLabelValues(code).Inc()
}

// IncrRetry increments the retry counter.
func (m *Metrics) IncrRetry(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

// IncrDedupShared increments the deduplicated call counter.
func (m *Metrics) IncrDedupShared(operation string) {
	m.dedupShared.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPollAttempt increments the polling counter with an outcome label
// (pending, terminal, error).
func (m *Metrics) IncrPollAttempt(outcome string) {
	m.pollAttempts.WithLabelValues(outcome).Inc()
}

// RetryCount returns the cumulative retries recorded for an operation.
func (m *Metrics) RetryCount(operation string) float64 {
	return getCounterValue(m.retries, operation)
}

// DedupSharedCount returns the cumulative shared calls for an operation.
func (m *Metrics) DedupSharedCount(operation string) float64 {
	return getCounterValue(m.dedupShared, operation)
}

// CacheHitCount returns the cumulative hits recorded for a cache.
func (m *Metrics) CacheHitCount(cache string) float64 {
	return getCounterValue(m.cacheHits, cache)
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
