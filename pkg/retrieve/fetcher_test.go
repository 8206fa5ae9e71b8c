package retrieve

import (
	"context"
	"fmt"
	"sync"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/metabase"
)

// fakeFetcher serves canned results keyed by resource and id. Unknown ids
// answer a classified 404.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]map[int]*metabase.Result
	errs    map[string]map[int]error
	calls   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		results: map[string]map[int]*metabase.Result{},
		errs:    map[string]map[int]error{},
		calls:   map[string]int{},
	}
}

func (f *fakeFetcher) set(resource string, id int, data map[string]any, source metabase.Source) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.results[resource] == nil {
		f.results[resource] = map[int]*metabase.Result{}
	}
	f.results[resource][id] = &metabase.Result{Data: data, Source: source}
	return f
}

func (f *fakeFetcher) fail(resource string, id int, err error) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs[resource] == nil {
		f.errs[resource] = map[int]error{}
	}
	f.errs[resource][id] = err
	return f
}

func (f *fakeFetcher) callCount(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

func (f *fakeFetcher) get(resource string, id int) (*metabase.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[resource]++

	if err, ok := f.errs[resource][id]; ok {
		return nil, err
	}
	if res, ok := f.results[resource][id]; ok {
		return res, nil
	}
	return nil, &metabase.APIError{
		Category:   metabase.CategoryNotFound,
		StatusCode: 404,
		Resource:   resource,
		ID:         id,
		Message:    "Not found.",
	}
}

func (f *fakeFetcher) GetCard(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("card", id)
}

func (f *fakeFetcher) GetDashboard(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("dashboard", id)
}

func (f *fakeFetcher) GetTable(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("table", id)
}

func (f *fakeFetcher) GetDatabase(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("database", id)
}

func (f *fakeFetcher) GetCollection(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("collection", id)
}

func (f *fakeFetcher) GetCollectionItems(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("collection_items", id)
}

func (f *fakeFetcher) GetField(_ context.Context, id int) (*metabase.Result, error) {
	return f.get("field", id)
}

func card(id int) map[string]any {
	return map[string]any{
		"id":          float64(id),
		"name":        fmt.Sprintf("Card %d", id),
		"description": "A saved question",
		"dataset_query": map[string]any{
			"native": map[string]any{"query": fmt.Sprintf("SELECT %d", id)},
		},
	}
}

func database(id, tables int) map[string]any {
	list := make([]any, tables)
	for i := range list {
		list[i] = map[string]any{"id": float64(i + 1), "name": fmt.Sprintf("TABLE_%d", i+1), "schema": "PUBLIC"}
	}
	return map[string]any{
		"id":      float64(id),
		"name":    fmt.Sprintf("Database %d", id),
		"engine":  "postgres",
		"details": map[string]any{"password": "secret"},
		"tables":  list,
	}
}
