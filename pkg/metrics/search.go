package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initSearchMetrics initializes retrieval loop metrics.
func (m *Manager) initSearchMetrics(cfg Config) {
	m.searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_searches_total",
			Help: "Total number of retrieval searches by source",
		},
		[]string{"source"},
	)

	m.searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_search_duration_seconds",
			Help:    "Retrieval search duration in seconds by source",
			Buckets: cfg.SearchDurationBuckets,
		},
		[]string{"source"},
	)

	m.searchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_search_results",
			Help:    "Number of results returned per search by source",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"source"},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_cache_lookups_total",
			Help: "Total number of external cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.feedbackEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_feedback_events_total",
			Help: "Total number of recorded feedback events",
		},
	)

	m.learnerUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_learner_updates_total",
			Help: "Total number of applied meta-learner updates",
		},
	)

	m.registry.MustRegister(m.searches)
	m.registry.MustRegister(m.searchDuration)
	m.registry.MustRegister(m.searchResults)
	m.registry.MustRegister(m.cacheLookups)
	m.registry.MustRegister(m.feedbackEvents)
	m.registry.MustRegister(m.learnerUpdates)
}

// SearchCompleted records one finished search leg. Source is "internal",
// "external" or "fused".
func (m *Manager) SearchCompleted(source string, results int, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.searches.WithLabelValues(source).Inc()
	m.searchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	m.searchResults.WithLabelValues(source).Observe(float64(results))
}

// CacheLookup records an external cache lookup outcome.
func (m *Manager) CacheLookup(hit bool) {
	if !m.enabled {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// FeedbackRecorded records a persisted feedback event.
func (m *Manager) FeedbackRecorded() {
	if !m.enabled {
		return
	}
	m.feedbackEvents.Inc()
}

// LearnerUpdated records an applied meta-learner update.
func (m *Manager) LearnerUpdated() {
	if !m.enabled {
		return
	}
	m.learnerUpdates.Inc()
}
