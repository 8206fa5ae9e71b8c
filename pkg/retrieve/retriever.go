// Package retrieve implements bulk read retrieval of Metabase entities:
// request validation, bounded concurrent fetching, size-driven shaping,
// nested table pagination, and response assembly.
package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/batch"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/logging"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/metabase"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/optimize"
)

// Retriever serves retrieval calls. It holds no per-call state and is safe
// for concurrent use.
type Retriever struct {
	fetcher Fetcher
	logger  logging.Logger
	now     func() time.Time
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithClock sets the clock used for retrieved_at stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) {
		r.now = now
	}
}

// New creates a Retriever. A nil logger discards all output.
func New(fetcher Fetcher, logger logging.Logger, opts ...Option) *Retriever {
	if fetcher == nil {
		panic("retrieve: fetcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	r := &Retriever{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve validates args, fetches every requested ID, and assembles the
// shaped results in request order. It fails only on invalid arguments or
// when every ID failed.
func (r *Retriever) Retrieve(ctx context.Context, args map[string]any, requestID string) (*Response, error) {
	start := time.Now()

	req, err := Validate(args)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Msg("Invalid retrieve request")
		return nil, err
	}
	defer func() {
		retrieveDuration.WithLabelValues(string(req.Model)).Observe(time.Since(start).Seconds())
	}()

	strat := strategies[req.Model]
	level := optimize.LevelFor(len(req.IDs))

	r.logger.Debug().
		Str("request_id", requestID).
		Str("model", string(req.Model)).
		Ints("ids", req.IDs).
		Str("optimization_level", level.String()).
		Int("concurrency", batch.Concurrency(len(req.IDs))).
		Msg("Starting retrieval")

	outcomes := batch.Fetch(ctx, req.IDs, func(ctx context.Context, id int) (*metabase.Result, error) {
		res, err := strat.fetch(r.fetcher, ctx, id)
		if err == nil && (res == nil || res.Data == nil) {
			err = fmt.Errorf("%s %d: %w", req.Model, id, errEmptyResult)
		}
		return res, err
	}, r.logger)

	at := r.now()
	resp := &Response{Results: make([]map[string]any, 0, len(outcomes))}
	var paged []pagedDatabase
	var firstErr error

	for _, o := range outcomes {
		if !o.OK() {
			if firstErr == nil {
				firstErr = o.Err
			}
			resp.FailedRetrievals++
			resp.Errors = append(resp.Errors, ItemError{ID: o.ID, Message: o.Err.Error()})
			itemsTotal.WithLabelValues(string(req.Model), "failure").Inc()
			continue
		}

		shaped, meta := strat.shape(o.Value.Data, level, at, req.Page)
		resp.Results = append(resp.Results, shaped)
		resp.SuccessfulRetrievals++
		itemsTotal.WithLabelValues(string(req.Model), "success").Inc()

		source := sourceOf(o.Value)
		sourcesTotal.WithLabelValues(string(req.Model), string(source)).Inc()
		if source == metabase.SourceCache {
			resp.Source.Cache++
		} else {
			resp.Source.API++
		}

		if meta != nil {
			paged = append(paged, pagedDatabase{id: o.ID, meta: meta})
		}
	}

	if resp.SuccessfulRetrievals == 0 {
		err := totalFailure(req.Model, len(req.IDs), firstErr)
		r.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("model", string(req.Model)).
			Int("requested", len(req.IDs)).
			Msg("Every requested item failed")
		return nil, err
	}

	if len(paged) > 0 {
		resp.UsageGuidance = usageGuidance(paged)
	}

	r.monitorSize(req, requestID, level, resp.Results)

	r.logger.Info().
		Str("request_id", requestID).
		Str("model", string(req.Model)).
		Int("requested", len(req.IDs)).
		Int("successful", resp.SuccessfulRetrievals).
		Int("failed", resp.FailedRetrievals).
		Int("cache", resp.Source.Cache).
		Int("api", resp.Source.API).
		Str("optimization_level", level.String()).
		Dur("duration", time.Since(start)).
		Msg("Retrieval completed")

	return resp, nil
}
