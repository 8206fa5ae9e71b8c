package metabase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_retries_total",
		Help: "Total number of retry attempts by error category",
	}, []string{"category"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metabase_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error category",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"category"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metabase_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error category",
	}, []string{"category"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// forCategory adjusts base for an error category. Rate limit answers back off
// twice as long; the limiter's cool-down covers the rest.
func (base RetryConfig) forCategory(category ErrorCategory) RetryConfig {
	cfg := base
	if category == CategoryRateLimit {
		cfg.InitialBackoff *= 2
		cfg.MaxBackoff *= 2
	}
	return cfg
}

// retryWithBackoff executes fn with exponential backoff and jitter.
// Only *APIError values with a retryable category are retried; the last
// error is returned unwrapped so callers keep its classification.
func retryWithBackoff(ctx context.Context, base RetryConfig, logger zerolog.Logger, fn func() error) error {
	if base.MaxAttempts < 1 {
		base.MaxAttempts = 1
	}

	var (
		lastErr  error
		category ErrorCategory
		backoff  time.Duration
	)

	for attempt := 1; attempt <= base.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("category", string(category)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return lastErr
		}
		if attempt == 1 || apiErr.Category != category {
			category = apiErr.Category
			backoff = base.forCategory(category).InitialBackoff
		}
		cfg := base.forCategory(category)

		if attempt >= cfg.MaxAttempts {
			break
		}

		retriesTotal.WithLabelValues(string(category)).Inc()

		// ±20% jitter
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		retryBackoffSeconds.WithLabelValues(string(category)).Observe(jitter.Seconds())

		logger.Debug().
			Str("category", string(category)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn().
				Str("category", string(category)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %w", ErrContextCancelled, lastErr)
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	retryExhaustedTotal.WithLabelValues(string(category)).Inc()
	logger.Warn().
		Err(lastErr).
		Str("category", string(category)).
		Int("max_attempts", base.MaxAttempts).
		Msg("Retry attempts exhausted")

	return lastErr
}
