// Package metabase provides the read-only Metabase REST client used by the
// retrieval tools, with request pacing, result caching, and classified errors.
package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/cache"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Metabase client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_requests_total",
		Help: "Total Metabase API requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metabase_request_duration_seconds",
		Help:    "Metabase API request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_errors_total",
		Help: "Total Metabase API errors by category",
	}, []string{"category"})
)

// maxBodyBytes bounds how much of one response body is read.
var maxBodyBytes int64 = 32 << 20

// Source tells whether a result was served from the cache or the live API.
type Source string

const (
	// SourceCache marks a result read from the result cache.
	SourceCache Source = "cache"

	// SourceAPI marks a result fetched from the live API.
	SourceAPI Source = "api"
)

// Result is one decoded upstream entity and where it came from.
type Result struct {
	Data   map[string]any
	Source Source
}

// Client is the Metabase REST client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cache      *cache.Manager
	limiter    *ratelimit.Tracker
	retry      RetryConfig
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the Metabase site URL, e.g. https://metabase.example.com
	BaseURL string

	// APIKey is sent as the X-API-KEY header.
	APIKey string

	// UserAgent header value.
	UserAgent string

	// Redis client for the result cache. Nil disables caching.
	Redis *redis.Client

	// CacheTTL is how long a fetched entity stays cached.
	CacheTTL time.Duration

	// Rate Limiting
	RateLimit float64 // Requests per second
	RateBurst int

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		UserAgent:      "metabase-mcp/0.1.0",
		CacheTTL:       10 * time.Minute,
		RateLimit:      ratelimit.DefaultRequestsPerSecond,
		RateBurst:      ratelimit.DefaultBurst,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Timeout:        30 * time.Second,
	}
}

// New creates a new Metabase client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "metabase-client").Logger()

	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries + 1
	if cfg.InitialBackoff > 0 {
		retry.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		retry.MaxBackoff = cfg.MaxBackoff
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		limiter: ratelimit.NewTracker(cfg.RateLimit, cfg.RateBurst, logger),
		retry:   retry,
		config:  cfg,
		logger:  logger,
	}

	if cfg.Redis != nil {
		if cfg.CacheTTL <= 0 {
			return nil, fmt.Errorf("cache ttl must be > 0 when redis is configured")
		}
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// GetCard fetches a saved question.
func (c *Client) GetCard(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "card", id, fmt.Sprintf("/api/card/%d", id), nil)
}

// GetDashboard fetches a dashboard with its dashcards.
func (c *Client) GetDashboard(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "dashboard", id, fmt.Sprintf("/api/dashboard/%d", id), nil)
}

// GetTable fetches a table with its field metadata.
func (c *Client) GetTable(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "table", id, fmt.Sprintf("/api/table/%d/query_metadata", id), nil)
}

// GetDatabase fetches a database including its table list.
func (c *Client) GetDatabase(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "database", id, fmt.Sprintf("/api/database/%d", id), url.Values{"include": []string{"tables"}})
}

// GetCollection fetches collection metadata.
func (c *Client) GetCollection(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "collection", id, fmt.Sprintf("/api/collection/%d", id), nil)
}

// GetCollectionItems fetches the items of a collection. Older servers answer
// with a bare array; it is normalized to {"data": [...], "total": n}.
func (c *Client) GetCollectionItems(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "collection_items", id, fmt.Sprintf("/api/collection/%d/items", id), nil)
}

// GetField fetches a single field.
func (c *Client) GetField(ctx context.Context, id int) (*Result, error) {
	return c.get(ctx, "field", id, fmt.Sprintf("/api/field/%d", id), nil)
}

// get serves resource from the cache when possible and from the API otherwise.
func (c *Client) get(ctx context.Context, resource string, id int, path string, query url.Values) (*Result, error) {
	key := cache.Key{Resource: resource, ID: id, Query: query}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			data, decodeErr := decodeEntity(entry.Data)
			if decodeErr == nil {
				c.logger.Debug().
					Str("resource", resource).
					Int("id", id).
					Msg("Cache hit")
				return &Result{Data: data, Source: SourceCache}, nil
			}
			c.logger.Warn().Err(decodeErr).Str("key", key.String()).Msg("Cached entity undecodable, refetching")
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
	}

	body, err := c.fetch(ctx, resource, id, path, query)
	if err != nil {
		return nil, err
	}

	data, err := decodeEntity(body)
	if err != nil {
		return nil, &APIError{
			Category:   CategoryServer,
			StatusCode: http.StatusOK,
			Resource:   resource,
			ID:         id,
			Message:    "undecodable response body",
			Err:        err,
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, cache.NewEntry(body, c.config.CacheTTL)); err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
		}
	}

	return &Result{Data: data, Source: SourceAPI}, nil
}

// fetch performs one GET with pacing and retries and returns the raw body.
func (c *Client) fetch(ctx context.Context, resource string, id int, path string, query url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	var body []byte
	err := retryWithBackoff(ctx, c.retry, c.logger, func() error {
		var reqErr error
		body, reqErr = c.doOnce(ctx, resource, id, path, query)
		return reqErr
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doOnce executes a single request attempt.
func (c *Client) doOnce(ctx context.Context, resource string, id int, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.networkError(resource, id, "rate limiter wait", err)
	}

	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("resource", resource).
		Int("id", id).
		Str("path", path).
		Msg("Executing Metabase request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(resource, "network_error").Inc()
		c.logger.Error().Err(err).Str("resource", resource).Int("id", id).Msg("HTTP request failed")
		return nil, c.networkError(resource, id, "request failed", err)
	}
	defer resp.Body.Close()

	c.limiter.UpdateFromResponse(resp.StatusCode, resp.Header)
	requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, c.networkError(resource, id, "read response body", err)
	}
	if int64(len(body)) > maxBodyBytes {
		errorsTotal.WithLabelValues(string(CategoryClient)).Inc()
		return nil, &APIError{
			Category:   CategoryClient,
			StatusCode: resp.StatusCode,
			Resource:   resource,
			ID:         id,
			Message:    fmt.Sprintf("response too large (over %d bytes)", maxBodyBytes),
		}
	}

	if resp.StatusCode >= 400 {
		category := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(category)).Inc()

		c.logger.Warn().
			Str("resource", resource).
			Int("id", id).
			Int("status", resp.StatusCode).
			Str("category", string(category)).
			Msg("Metabase request error")

		return nil, &APIError{
			Category:   category,
			StatusCode: resp.StatusCode,
			Resource:   resource,
			ID:         id,
			Message:    upstreamMessage(body, resp.Status),
		}
	}

	return body, nil
}

func (c *Client) networkError(resource string, id int, msg string, err error) *APIError {
	errorsTotal.WithLabelValues(string(CategoryNetwork)).Inc()
	return &APIError{
		Category: CategoryNetwork,
		Resource: resource,
		ID:       id,
		Message:  msg,
		Err:      err,
	}
}

// decodeEntity decodes a body into an object. A top-level array becomes
// {"data": [...], "total": n}.
func decodeEntity(body []byte) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}

	switch v := decoded.(type) {
	case map[string]any:
		return v, nil
	case []any:
		return map[string]any{"data": v, "total": len(v)}, nil
	default:
		return nil, fmt.Errorf("decode entity: unexpected JSON %T", decoded)
	}
}

// upstreamMessage extracts a human readable message from an error body.
// Metabase answers either plain text or {"message": "..."}.
func upstreamMessage(body []byte, status string) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return status
	}

	if trimmed[0] == '{' {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil && payload.Message != "" {
			return truncate(payload.Message, 200)
		}
	}

	return truncate(string(trimmed), 200)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
