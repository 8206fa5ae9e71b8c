package retrieve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retrieval calls.
var (
	itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_retrieve_items_total",
		Help: "Retrieved items by model and outcome (success, failure)",
	}, []string{"model", "outcome"})

	sourcesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_retrieve_sources_total",
		Help: "Successfully retrieved items by model and source (cache, api)",
	}, []string{"model", "source"})

	estimatedTokens = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metabase_retrieve_estimated_tokens",
		Help:    "Estimated token cost of retrieval responses",
		Buckets: []float64{500, 1000, 2500, 5000, 10000, 15000, 20000, 40000},
	}, []string{"model"})

	retrieveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metabase_retrieve_duration_seconds",
		Help:    "Duration of retrieval calls by model",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"model"})
)
