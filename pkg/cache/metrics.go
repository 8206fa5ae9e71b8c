package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by resource
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metabase_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"resource"},
	)

	// CacheMisses tracks cache misses by resource
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metabase_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"resource"},
	)

	// CacheStoredBytes tracks compressed bytes written to Redis
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metabase_cache_stored_bytes_total",
			Help: "Total compressed bytes written to the result cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metabase_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
