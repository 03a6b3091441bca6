// Package observability registers the engine's prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedCacheHits / FeedCacheMisses track the feed list cache read path.
	FeedCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_feed_cache_hits_total",
		Help: "Feed list cache hits.",
	})
	FeedCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_feed_cache_misses_total",
		Help: "Feed list cache misses.",
	})

	// MirrorErrors counts swallowed mirror-cache failures. The mirror is
	// advisory, so failures only ever show up here and in logs.
	MirrorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_mirror_cache_errors_total",
		Help: "Best-effort mirror cache failures (logged and swallowed).",
	})

	// JobsProcessed tracks dispatcher outcomes per queue.
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engage_jobs_processed_total",
		Help: "Background jobs by queue and outcome.",
	}, []string{"queue", "outcome"})
)
