package retrieve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	req, err := Validate(map[string]any{
		"model": "card",
		"ids":   []any{float64(3), float64(1), float64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, ModelCard, req.Model)
	assert.Equal(t, []int{3, 1, 3}, req.IDs, "order and duplicates preserved")
	assert.Equal(t, 0, req.Page.Offset)
	assert.Nil(t, req.Page.Limit)
}

func TestValidate_DatabasePage(t *testing.T) {
	req, err := Validate(map[string]any{
		"model":        "database",
		"ids":          []any{float64(1)},
		"table_offset": float64(20),
		"table_limit":  float64(100),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, req.Page.Offset)
	require.NotNil(t, req.Page.Limit)
	assert.Equal(t, 100, *req.Page.Limit)
}

func TestValidate_AcceptedNumberTypes(t *testing.T) {
	for _, id := range []any{float64(7), 7, int64(7), json.Number("7")} {
		req, err := Validate(map[string]any{"model": "field", "ids": []any{id}})
		require.NoError(t, err, "id %T", id)
		assert.Equal(t, []int{7}, req.IDs)
	}

	for _, list := range []any{[]int{4, 5}, []int64{4, 5}, []float64{4, 5}} {
		req, err := Validate(map[string]any{"model": "table", "ids": list})
		require.NoError(t, err, "ids %T", list)
		assert.Equal(t, []int{4, 5}, req.IDs)
	}

	_, err := Validate(map[string]any{"model": "table", "ids": []float64{4.5}})
	require.Error(t, err)
	assert.Equal(t, "Invalid parameter: ids (invalid id 4.5: must be a positive integer)", err.Error())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		message string
	}{
		{
			name:    "missing model",
			args:    map[string]any{"ids": ids(1)},
			message: "Invalid parameter: model (must be one of: card, dashboard, table, database, collection, field)",
		},
		{
			name:    "unknown model",
			args:    map[string]any{"model": "question", "ids": ids(1)},
			message: "Invalid parameter: model (must be one of: card, dashboard, table, database, collection, field)",
		},
		{
			name:    "missing ids",
			args:    map[string]any{"model": "card"},
			message: "Invalid parameter: ids (must be a non-empty array of integers)",
		},
		{
			name:    "ids not an array",
			args:    map[string]any{"model": "card", "ids": float64(1)},
			message: "Invalid parameter: ids (must be a non-empty array of integers)",
		},
		{
			name:    "empty ids",
			args:    map[string]any{"model": "card", "ids": []any{}},
			message: "Invalid parameter: ids (must be a non-empty array of integers)",
		},
		{
			name:    "too many cards",
			args:    map[string]any{"model": "card", "ids": ids(51)},
			message: "Invalid parameter: ids (maximum 50 IDs per request for model card)",
		},
		{
			name:    "too many databases",
			args:    map[string]any{"model": "database", "ids": ids(3)},
			message: "Invalid parameter: ids (maximum 2 IDs per request for model database)",
		},
		{
			name:    "zero id",
			args:    map[string]any{"model": "card", "ids": []any{float64(1), float64(0)}},
			message: "Invalid parameter: ids (invalid id 0: must be a positive integer)",
		},
		{
			name:    "fractional id",
			args:    map[string]any{"model": "card", "ids": []any{float64(1.5)}},
			message: "Invalid parameter: ids (invalid id 1.5: must be a positive integer)",
		},
		{
			name:    "string id reported literally",
			args:    map[string]any{"model": "card", "ids": []any{float64(2), "abc", float64(-1)}},
			message: `Invalid parameter: ids (invalid id "abc": must be a positive integer)`,
		},
		{
			name:    "table_offset on card",
			args:    map[string]any{"model": "card", "ids": ids(1), "table_offset": float64(0)},
			message: "Invalid parameter: table_offset/table_limit (only supported for model=database)",
		},
		{
			name:    "table_limit on collection",
			args:    map[string]any{"model": "collection", "ids": ids(1), "table_limit": float64(10)},
			message: "Invalid parameter: table_offset/table_limit (only supported for model=database)",
		},
		{
			name:    "negative offset",
			args:    map[string]any{"model": "database", "ids": ids(1), "table_offset": float64(-1)},
			message: "Invalid parameter: table_offset (must be a number >= 0)",
		},
		{
			name:    "offset not a number",
			args:    map[string]any{"model": "database", "ids": ids(1), "table_offset": "10"},
			message: "Invalid parameter: table_offset (must be a number >= 0)",
		},
		{
			name:    "table_offset beyond int range",
			args:    map[string]any{"model": "database", "ids": ids(1), "table_offset": float64(1e20), "table_limit": float64(5)},
			message: "Invalid parameter: table_offset (must be at most 2147483647)",
		},
		{
			name:    "limit too large",
			args:    map[string]any{"model": "database", "ids": ids(1), "table_limit": float64(150)},
			message: "Invalid parameter: table_limit (must be a number between 1 and 100)",
		},
		{
			name:    "limit zero",
			args:    map[string]any{"model": "database", "ids": ids(1), "table_limit": float64(0)},
			message: "Invalid parameter: table_limit (must be a number between 1 and 100)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Validate(tt.args)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_NullPageParamsIgnored(t *testing.T) {
	req, err := Validate(map[string]any{
		"model":        "card",
		"ids":          ids(2),
		"table_offset": nil,
		"table_limit":  nil,
	})
	require.NoError(t, err)
	assert.Len(t, req.IDs, 2)
}
