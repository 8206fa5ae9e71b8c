package retrieve

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/optimize"
)

// Model is a retrievable entity kind.
type Model string

const (
	ModelCard       Model = "card"
	ModelDashboard  Model = "dashboard"
	ModelTable      Model = "table"
	ModelDatabase   Model = "database"
	ModelCollection Model = "collection"
	ModelField      Model = "field"
)

// Models lists the supported models in display order.
var Models = []Model{ModelCard, ModelDashboard, ModelTable, ModelDatabase, ModelCollection, ModelField}

// ID caps per request.
const (
	MaxIDs         = 50
	MaxDatabaseIDs = 2
	MaxTableLimit  = 100
)

// MaxIDsFor returns the ID cap for model.
func MaxIDsFor(model Model) int {
	if model == ModelDatabase {
		return MaxDatabaseIDs
	}
	return MaxIDs
}

// Request is a validated retrieval request.
type Request struct {
	Model Model
	IDs   []int

	// Page applies to a database's tables only.
	Page optimize.Page
}

// Validate checks raw tool arguments and returns the request they describe.
// Numbers are accepted as float64 (decoded JSON), int, int64, or json.Number.
// ids may be a []any of those, or a []int, []int64, or []float64.
func Validate(args map[string]any) (*Request, error) {
	model, err := validateModel(args["model"])
	if err != nil {
		return nil, err
	}

	ids, err := validateIDs(args["ids"], model)
	if err != nil {
		return nil, err
	}

	req := &Request{Model: model, IDs: ids}

	rawOffset, hasOffset := present(args, "table_offset")
	rawLimit, hasLimit := present(args, "table_limit")
	if (hasOffset || hasLimit) && model != ModelDatabase {
		return nil, &ValidationError{Param: "table_offset/table_limit", Reason: "only supported for model=database"}
	}

	if hasOffset {
		offset, ok := toNumber(rawOffset)
		if !ok || offset < 0 {
			return nil, &ValidationError{Param: "table_offset", Reason: "must be a number >= 0"}
		}
		if offset > math.MaxInt32 {
			return nil, &ValidationError{Param: "table_offset", Reason: fmt.Sprintf("must be at most %d", math.MaxInt32)}
		}
		req.Page.Offset = int(offset)
	}

	if hasLimit {
		limit, ok := toNumber(rawLimit)
		if !ok || limit < 1 || limit > MaxTableLimit {
			return nil, &ValidationError{Param: "table_limit", Reason: fmt.Sprintf("must be a number between 1 and %d", MaxTableLimit)}
		}
		n := int(limit)
		req.Page.Limit = &n
	}

	return req, nil
}

func validateModel(v any) (Model, error) {
	name, _ := v.(string)
	for _, m := range Models {
		if Model(name) == m {
			return m, nil
		}
	}

	names := make([]string, len(Models))
	for i, m := range Models {
		names[i] = string(m)
	}
	return "", &ValidationError{Param: "model", Reason: "must be one of: " + strings.Join(names, ", ")}
}

func validateIDs(v any, model Model) ([]int, error) {
	var raw []any
	switch ids := v.(type) {
	case []any:
		raw = ids
	case []int:
		raw = boxed(ids)
	case []int64:
		raw = boxed(ids)
	case []float64:
		raw = boxed(ids)
	}

	if len(raw) == 0 {
		return nil, &ValidationError{Param: "ids", Reason: "must be a non-empty array of integers"}
	}

	if limit := MaxIDsFor(model); len(raw) > limit {
		return nil, &ValidationError{Param: "ids", Reason: fmt.Sprintf("maximum %d IDs per request for model %s", limit, model)}
	}

	ids := make([]int, len(raw))
	for i, item := range raw {
		n, ok := toNumber(item)
		if !ok || n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
			return nil, &ValidationError{Param: "ids", Reason: fmt.Sprintf("invalid id %s: must be a positive integer", literal(item))}
		}
		ids[i] = int(n)
	}
	return ids, nil
}

func boxed[T int | int64 | float64](ids []T) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// present reports whether key is set to a non-null value.
func present(args map[string]any, key string) (any, bool) {
	v, ok := args[key]
	return v, ok && v != nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// literal renders a rejected value the way the caller sent it.
func literal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
