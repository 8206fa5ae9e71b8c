// Package batch fetches one item per ID with bounded concurrency, isolating
// per-ID failures.
//
// IDs are split into windows no larger than the concurrency cap. All fetches
// inside a window run concurrently and the window fully resolves before the
// next one starts. Outcomes are returned in input order.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/logging"
)

var (
	windowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "metabase_batch_window_duration_seconds",
		Help:    "Time for one concurrent fetch window to resolve",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	fetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "metabase_batch_fetches_in_flight",
		Help: "Number of per-ID fetches currently outstanding",
	})
)

// FetchFunc fetches the item for one ID.
type FetchFunc[T any] func(ctx context.Context, id int) (T, error)

// Outcome is the result of fetching one ID. Exactly one of Value and Err is meaningful.
type Outcome[T any] struct {
	Index int
	ID    int
	Value T
	Err   error
}

// OK reports whether the fetch succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Concurrency returns the in-flight cap for a batch of n IDs.
func Concurrency(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 3:
		return n
	case n <= 20:
		return 8
	default:
		return 5
	}
}

// Fetch runs fetch for every ID and returns one outcome per ID, in input order.
// A failing ID never aborts the others. Once ctx is done, IDs in windows not
// yet started are recorded as failed with the context error.
func Fetch[T any](ctx context.Context, ids []int, fetch FetchFunc[T], logger logging.Logger) []Outcome[T] {
	outcomes := make([]Outcome[T], len(ids))
	limit := Concurrency(len(ids))
	if limit == 0 {
		return outcomes
	}

	start := time.Now()
	failed := 0

	for lo := 0; lo < len(ids); lo += limit {
		hi := min(lo+limit, len(ids))

		if err := ctx.Err(); err != nil {
			for i := lo; i < len(ids); i++ {
				outcomes[i] = Outcome[T]{Index: i, ID: ids[i], Err: fmt.Errorf("fetch %d: %w", ids[i], err)}
			}
			failed += len(ids) - lo
			logger.Warn().
				Int("remaining", len(ids)-lo).
				Msg("Context done, skipping remaining windows")
			break
		}

		windowStart := time.Now()
		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			wg.Add(1)
			fetchesInFlight.Inc()
			go func(i int) {
				defer wg.Done()
				defer fetchesInFlight.Dec()

				value, err := fetch(ctx, ids[i])
				// each goroutine owns outcomes[i]
				outcomes[i] = Outcome[T]{Index: i, ID: ids[i], Value: value, Err: err}
			}(i)
		}
		wg.Wait()
		windowDuration.Observe(time.Since(windowStart).Seconds())

		for i := lo; i < hi; i++ {
			if outcomes[i].Err != nil {
				failed++
				logger.Warn().
					Err(outcomes[i].Err).
					Int("id", ids[i]).
					Msg("Fetch failed")
			}
		}

		logger.Debug().
			Int("window_start", lo).
			Int("window_size", hi-lo).
			Dur("duration", time.Since(windowStart)).
			Msg("Fetch window complete")
	}

	logger.Debug().
		Int("total", len(ids)).
		Int("failed", failed).
		Int("concurrency", limit).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return outcomes
}
