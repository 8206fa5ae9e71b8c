package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request pacing.
var (
	rateLimitPausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metabase_rate_limit_pauses_total",
		Help: "Total number of 429 responses that paused outgoing requests",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "metabase_rate_limit_wait_seconds",
		Help:    "Time requests spent waiting for the rate limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})
)

// Tracker gates outgoing requests.
type Tracker struct {
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewTracker creates a tracker allowing rps requests per second with the given burst.
// Non-positive values fall back to the defaults.
func NewTracker(rps float64, burst int, logger zerolog.Logger) *Tracker {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Tracker{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// State returns a snapshot of the current pacing state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Wait blocks until a request may be sent or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		rateLimitWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	state := t.State()
	if pause := state.TimeUntilResume(); pause > 0 {
		t.logger.Debug().
			Dur("pause", pause).
			Msg("Waiting for rate limit cool-down")

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limit cool-down: %w", ctx.Err())
		case <-timer.C:
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// UpdateFromResponse records a response status. A 429 pauses all requests
// for the duration named by its Retry-After header.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.state.LastStatus = statusCode
	t.state.LastUpdate = now

	if statusCode != http.StatusTooManyRequests {
		return
	}

	pause := parseRetryAfter(headers.Get("Retry-After"), now)
	if until := now.Add(pause); until.After(t.state.PausedUntil) {
		t.state.PausedUntil = until
	}

	rateLimitPausesTotal.Inc()
	t.logger.Warn().
		Dur("pause", pause).
		Time("paused_until", t.state.PausedUntil).
		Msg("Upstream rate limit hit - pausing requests")
}

// parseRetryAfter reads a Retry-After value given as seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return DefaultRetryAfter
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return DefaultRetryAfter
	}

	switch {
	case d <= 0:
		return DefaultRetryAfter
	case d > MaxRetryAfter:
		return MaxRetryAfter
	default:
		return d
	}
}
