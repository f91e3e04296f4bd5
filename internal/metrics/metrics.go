// Package metrics exposes Prometheus instrumentation for the scoring
// engine: cache traffic, score submissions and stage composition cost.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	invalidations   prometheus.Counter
	invalidatedKeys prometheus.Counter
	scoresSubmitted prometheus.Counter
	scoresDeleted   prometheus.Counter
	composeDuration *prometheus.HistogramVec
}

// New creates metrics registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics registered on reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate-registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowntally_cache_hits_total",
			Help: "Cache hits for derived scoring results, by scope.",
		}, []string{"scope"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crowntally_cache_misses_total",
			Help: "Cache misses for derived scoring results, by scope.",
		}, []string{"scope"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowntally_cache_invalidations_total",
			Help: "Invalidation events triggered by score mutations.",
		}),
		invalidatedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowntally_cache_invalidated_keys_total",
			Help: "Cache entries removed by invalidation events.",
		}),
		scoresSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowntally_scores_submitted_total",
			Help: "Scores accepted and persisted.",
		}),
		scoresDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crowntally_scores_deleted_total",
			Help: "Scores removed.",
		}),
		composeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crowntally_stage_compose_duration_seconds",
			Help:    "Wall time of stage composition, by ranking method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(m.cacheHits, m.cacheMisses, m.invalidations, m.invalidatedKeys,
		m.scoresSubmitted, m.scoresDeleted, m.composeDuration)
	return m
}

// CacheHit implements cache.Recorder
func (m *Metrics) CacheHit(scope string) {
	m.cacheHits.WithLabelValues(scope).Inc()
}

// CacheMiss implements cache.Recorder
func (m *Metrics) CacheMiss(scope string) {
	m.cacheMisses.WithLabelValues(scope).Inc()
}

// CacheInvalidation implements cache.Recorder
func (m *Metrics) CacheInvalidation(removed int) {
	m.invalidations.Inc()
	m.invalidatedKeys.Add(float64(removed))
}

// ScoreSubmitted counts an accepted score write
func (m *Metrics) ScoreSubmitted() {
	m.scoresSubmitted.Inc()
}

// ScoreDeleted counts a score removal
func (m *Metrics) ScoreDeleted() {
	m.scoresDeleted.Inc()
}

// ObserveCompose records one stage composition
func (m *Metrics) ObserveCompose(method string, d time.Duration) {
	m.composeDuration.WithLabelValues(method).Observe(d.Seconds())
}
