// Package metrics exposes the Prometheus registry shared by the Metabase MCP
// server. Metrics are defined with promauto in the packages that record them
// (metabase, cache, ratelimit, batch, retrieve) and are all registered on the
// default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all metrics are created on.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the registered metrics for exposition.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/metabase):
//   - metabase_requests_total{resource, status} (Counter): Requests by resource and HTTP status
//   - metabase_request_duration_seconds{resource} (Histogram): Request duration including retries
//   - metabase_errors_total{category} (Counter): Errors by category (not_found, auth, client, rate_limit, server, network)
//
// Retry Metrics (pkg/metabase):
//   - metabase_retries_total{category} (Counter): Retry attempts by error category
//   - metabase_retry_backoff_seconds{category} (Histogram): Backoff duration by error category
//   - metabase_retry_exhausted_total{category} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - metabase_rate_limit_pauses_total (Counter): 429 responses that paused outgoing requests
//   - metabase_rate_limit_wait_seconds (Histogram): Time spent waiting for the limiter
//
// Cache Metrics (pkg/cache):
//   - metabase_cache_hits_total{resource} (Counter): Result cache hits
//   - metabase_cache_misses_total{resource} (Counter): Result cache misses
//   - metabase_cache_stored_bytes_total (Counter): Compressed bytes written to Redis
//   - metabase_cache_errors_total{operation} (Counter): Cache operation errors
//
// Batch Metrics (pkg/batch):
//   - metabase_batch_window_duration_seconds (Histogram): Time for one fetch window to resolve
//   - metabase_batch_fetches_in_flight (Gauge): Outstanding per-ID fetches
//
// Retrieval Metrics (pkg/retrieve):
//   - metabase_retrieve_items_total{model, outcome} (Counter): Items by model and outcome (success, failure)
//   - metabase_retrieve_sources_total{model, source} (Counter): Successful items by source (cache, api)
//   - metabase_retrieve_estimated_tokens{model} (Histogram): Estimated token cost of responses
//   - metabase_retrieve_duration_seconds{model} (Histogram): Retrieval call duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(metabase_cache_hits_total[5m])) /
//   (sum(rate(metabase_cache_hits_total[5m])) + sum(rate(metabase_cache_misses_total[5m])))
//
//   # Per-item failure ratio by model
//   sum by (model) (rate(metabase_retrieve_items_total{outcome="failure"}[5m])) /
//   sum by (model) (rate(metabase_retrieve_items_total[5m]))
//
//   # Responses over the large-size threshold
//   sum(rate(metabase_retrieve_estimated_tokens_bucket{le="+Inf"}[5m])) -
//   sum(rate(metabase_retrieve_estimated_tokens_bucket{le="20000"}[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(metabase_request_duration_seconds_bucket[5m]))
