package retrieve

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/metabase"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/optimize"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/pagination"
)

// Fetcher is the upstream read API. *metabase.Client implements it.
type Fetcher interface {
	GetCard(ctx context.Context, id int) (*metabase.Result, error)
	GetDashboard(ctx context.Context, id int) (*metabase.Result, error)
	GetTable(ctx context.Context, id int) (*metabase.Result, error)
	GetDatabase(ctx context.Context, id int) (*metabase.Result, error)
	GetCollection(ctx context.Context, id int) (*metabase.Result, error)
	GetCollectionItems(ctx context.Context, id int) (*metabase.Result, error)
	GetField(ctx context.Context, id int) (*metabase.Result, error)
}

// errEmptyResult is returned when the fetcher answers without data.
var errEmptyResult = errors.New("empty result")

type shapeFunc func(raw map[string]any, level optimize.Level, at time.Time, page optimize.Page) (map[string]any, *pagination.Metadata)

// strategy is how one model is fetched and shaped. fetch takes the
// Fetcher first so method expressions such as Fetcher.GetCard fit.
type strategy struct {
	fetch func(f Fetcher, ctx context.Context, id int) (*metabase.Result, error)
	shape shapeFunc
}

var strategies = map[Model]strategy{
	ModelCard:       {fetch: Fetcher.GetCard, shape: unpaged(optimize.Card)},
	ModelDashboard:  {fetch: Fetcher.GetDashboard, shape: unpaged(optimize.Dashboard)},
	ModelTable:      {fetch: Fetcher.GetTable, shape: unpaged(optimize.Table)},
	ModelDatabase:   {fetch: Fetcher.GetDatabase, shape: optimize.Database},
	ModelCollection: {fetch: fetchCollection, shape: unpaged(optimize.Collection)},
	ModelField:      {fetch: Fetcher.GetField, shape: unpaged(optimize.Field)},
}

func unpaged(fn func(map[string]any, optimize.Level, time.Time) map[string]any) shapeFunc {
	return func(raw map[string]any, level optimize.Level, at time.Time, _ optimize.Page) (map[string]any, *pagination.Metadata) {
		return fn(raw, level, at), nil
	}
}

// fetchCollection fetches a collection and then its items as one unit.
// Either half failing fails the whole ID.
func fetchCollection(f Fetcher, ctx context.Context, id int) (*metabase.Result, error) {
	coll, err := f.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if coll == nil || coll.Data == nil {
		return nil, fmt.Errorf("collection %d: %w", id, errEmptyResult)
	}

	items, err := f.GetCollectionItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if items == nil || items.Data == nil {
		return nil, fmt.Errorf("collection %d items: %w", id, errEmptyResult)
	}

	data := maps.Clone(coll.Data)
	data["items"] = items.Data

	source := metabase.SourceAPI
	if sourceOf(coll) == metabase.SourceCache && sourceOf(items) == metabase.SourceCache {
		source = metabase.SourceCache
	}
	return &metabase.Result{Data: data, Source: source}, nil
}

// sourceOf reads an untagged result as coming from the API.
func sourceOf(r *metabase.Result) metabase.Source {
	if r.Source == metabase.SourceCache {
		return metabase.SourceCache
	}
	return metabase.SourceAPI
}
