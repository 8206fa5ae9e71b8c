package optimize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var retrievedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))

const retrievedAtText = "2026-03-14T08:30:00Z"

func rawCard() map[string]any {
	return map[string]any{
		"id":            float64(12),
		"name":          "Orders by region",
		"description":   "Weekly orders",
		"type":          "question",
		"display":       "bar",
		"query_type":    "native",
		"database_id":   float64(1),
		"table_id":      nil,
		"collection_id": float64(3),
		"created_at":    "2025-01-01T00:00:00Z",
		"updated_at":    "2025-02-01T00:00:00Z",
		"view_count":    float64(87),
		"creator": map[string]any{
			"id": float64(5), "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		},
		"collection": map[string]any{
			"id": float64(3), "name": "Sales", "location": "/1/",
		},
		"dataset_query": map[string]any{
			"native": map[string]any{"query": "SELECT region, count(*) FROM orders GROUP BY 1"},
		},
		"parameters": []any{
			map[string]any{
				"id": "p1", "name": "Region", "slug": "region", "type": "string/=",
				"target":             []any{"variable", []any{"template-tag", "region"}},
				"values_source_type": "card",
				"values_source_config": map[string]any{
					"card_id": float64(40),
				},
			},
		},
		"result_metadata": []any{
			map[string]any{"name": "REGION", "display_name": "Region", "base_type": "type/Text", "semantic_type": "type/Category"},
		},
		"visualization_settings": map[string]any{"graph.dimensions": []any{"REGION"}},
	}
}

func TestCard_Levels(t *testing.T) {
	raw := rawCard()

	standard := Card(raw, Standard, retrievedAt)
	assert.Equal(t, "Weekly orders", standard["description"])
	assert.Equal(t, float64(87), standard["view_count"])
	assert.Equal(t, "2025-01-01T00:00:00Z", standard["created_at"])
	assert.Equal(t, map[string]any{"id": float64(5), "name": "Ada Lovelace", "email": "ada@example.com"}, standard["creator"])
	assert.Equal(t, map[string]any{"id": float64(3), "name": "Sales", "location": "/1/"}, standard["collection"])
	assert.NotContains(t, standard, "visualization_settings")
	assert.NotContains(t, standard, "table_id", "null values are not emitted")

	aggressive := Card(raw, Aggressive, retrievedAt)
	assert.Equal(t, "Weekly orders", aggressive["description"])
	assert.NotContains(t, aggressive, "view_count")
	assert.NotContains(t, aggressive, "created_at")
	assert.Equal(t, map[string]any{"id": float64(5), "name": "Ada Lovelace"}, aggressive["creator"])
	assert.Equal(t, map[string]any{"id": float64(3), "name": "Sales"}, aggressive["collection"])

	ultra := Card(raw, UltraMinimal, retrievedAt)
	for _, dropped := range []string{"description", "creator", "collection", "collection_id", "created_at", "view_count"} {
		assert.NotContains(t, ultra, dropped)
	}

	for _, shaped := range []map[string]any{standard, aggressive, ultra} {
		assert.Equal(t, float64(12), shaped["id"])
		assert.Equal(t, "Orders by region", shaped["name"])
		assert.Equal(t, retrievedAtText, shaped["retrieved_at"])

		native, ok := shaped["native_query"].(map[string]any)
		require.True(t, ok, "native query kept at every level")
		assert.Equal(t, "SELECT region, count(*) FROM orders GROUP BY 1", native["query"])

		params := shaped["parameters"].([]any)
		require.Len(t, params, 1)
		param := params[0].(map[string]any)
		assert.Equal(t, "card", param["values_source_type"])
		assert.Equal(t, map[string]any{"card_id": float64(40)}, param["values_source_config"])
		assert.Equal(t, "region", param["slug"])
		assert.NotNil(t, param["target"])

		cols := shaped["result_columns"].([]any)
		assert.Equal(t, "type/Category", cols[0].(map[string]any)["semantic_type"])
	}
}

func TestCard_StructuredQueryHasNoNativeBlock(t *testing.T) {
	raw := rawCard()
	raw["dataset_query"] = map[string]any{
		"type":  "query",
		"query": map[string]any{"source-table": float64(4)},
	}

	shaped := Card(raw, Standard, retrievedAt)
	assert.NotContains(t, shaped, "native_query")
}

func TestDashboard(t *testing.T) {
	raw := map[string]any{
		"id":          float64(7),
		"name":        "Sales overview",
		"description": "Top-line sales",
		"created_at":  "2025-01-01T00:00:00Z",
		"tabs":        []any{map[string]any{"id": float64(1), "name": "Summary", "position": float64(0)}},
		"parameters": []any{
			map[string]any{"id": "d1", "name": "Date", "slug": "date", "type": "date/all-options"},
		},
		"dashcards": []any{
			map[string]any{
				"id": float64(100), "card_id": float64(12), "dashboard_tab_id": float64(1),
				"row": float64(0), "col": float64(0), "size_x": float64(12), "size_y": float64(6),
				"parameter_mappings": []any{
					map[string]any{"parameter_id": "d1", "card_id": float64(12), "target": []any{"dimension"}},
				},
				"card": rawCard(),
			},
			map[string]any{
				"id": float64(101), "card_id": nil,
				"row": float64(6), "col": float64(0), "size_x": float64(24), "size_y": float64(1),
				"card":                   map[string]any{"query_average_duration": nil},
				"visualization_settings": map[string]any{"text": "## Notes"},
			},
		},
	}

	standard := Dashboard(raw, Standard, retrievedAt)
	assert.Equal(t, "Top-line sales", standard["description"])
	assert.Equal(t, []any{map[string]any{"id": float64(1), "name": "Summary"}}, standard["tabs"])
	assert.Equal(t, retrievedAtText, standard["retrieved_at"])

	dashcards := standard["dashcards"].([]any)
	require.Len(t, dashcards, 2)

	first := dashcards[0].(map[string]any)
	assert.Equal(t, float64(12), first["size_x"])
	assert.Equal(t, float64(6), first["size_y"])
	assert.Len(t, first["parameter_mappings"], 1)
	card := first["card"].(map[string]any)
	assert.Equal(t, float64(12), card["id"])
	assert.Contains(t, card, "native_query")
	assert.Contains(t, card, "parameters")
	assert.Contains(t, card, "result_columns")
	assert.NotContains(t, card, "creator")

	text := dashcards[1].(map[string]any)
	assert.Equal(t, "## Notes", text["text"])
	assert.NotContains(t, text, "card")

	ultra := Dashboard(raw, UltraMinimal, retrievedAt)
	assert.NotContains(t, ultra, "description")
	assert.NotContains(t, ultra, "tabs")
	ultraCards := ultra["dashcards"].([]any)
	assert.Equal(t, float64(12), ultraCards[0].(map[string]any)["size_x"], "layout kept at every level")
	assert.NotContains(t, ultraCards[1].(map[string]any), "text")
}

func TestDashboard_LegacyOrderedCards(t *testing.T) {
	raw := map[string]any{
		"id":   float64(7),
		"name": "Legacy",
		"ordered_cards": []any{
			map[string]any{"id": float64(1), "card_id": float64(2), "card": map[string]any{"id": float64(2), "name": "Old"}},
		},
	}

	shaped := Dashboard(raw, Aggressive, retrievedAt)
	dashcards := shaped["dashcards"].([]any)
	require.Len(t, dashcards, 1)
	assert.Equal(t, "Old", dashcards[0].(map[string]any)["card"].(map[string]any)["name"])
}

func rawTable() map[string]any {
	return map[string]any{
		"id":           float64(4),
		"name":         "ORDERS",
		"display_name": "Orders",
		"schema":       "PUBLIC",
		"db_id":        float64(1),
		"description":  "All orders",
		"entity_type":  "entity/TransactionTable",
		"created_at":   "2025-01-01T00:00:00Z",
		"fields": []any{
			map[string]any{
				"id": float64(40), "name": "ID", "display_name": "ID", "base_type": "type/BigInteger",
				"semantic_type": "type/PK", "database_type": "BIGINT", "position": float64(0),
				"fingerprint": map[string]any{"global": map[string]any{"distinct-count": float64(18760)}},
			},
			map[string]any{
				"id": float64(41), "name": "USER_ID", "display_name": "User ID", "base_type": "type/Integer",
				"semantic_type": "type/FK", "fk_target_field_id": float64(90), "database_type": "INTEGER",
				"description": "Buyer",
			},
		},
	}
}

func TestTable_Levels(t *testing.T) {
	standard := Table(rawTable(), Standard, retrievedAt)
	assert.Equal(t, "All orders", standard["description"])
	assert.Equal(t, "entity/TransactionTable", standard["entity_type"])
	assert.Equal(t, float64(1), standard["db_id"])

	fields := standard["fields"].([]any)
	require.Len(t, fields, 2)
	id := fields[0].(map[string]any)
	assert.Equal(t, "BIGINT", id["database_type"])
	assert.Equal(t, float64(0), id["position"])
	assert.NotContains(t, id, "fingerprint")

	ultra := Table(rawTable(), UltraMinimal, retrievedAt)
	assert.NotContains(t, ultra, "description")
	assert.NotContains(t, ultra, "display_name")
	ultraFields := ultra["fields"].([]any)
	require.Len(t, ultraFields, 2, "full field list at every level")
	fk := ultraFields[1].(map[string]any)
	assert.Equal(t, map[string]any{
		"id": float64(41), "name": "USER_ID", "base_type": "type/Integer",
		"semantic_type": "type/FK", "fk_target_field_id": float64(90),
	}, fk)
}

func TestTable_NoFields(t *testing.T) {
	shaped := Table(map[string]any{"id": float64(1), "name": "EMPTY"}, Standard, retrievedAt)
	assert.Equal(t, []any{}, shaped["fields"])
}

func TestField_Levels(t *testing.T) {
	raw := map[string]any{
		"id": float64(41), "name": "USER_ID", "display_name": "User ID", "base_type": "type/Integer",
		"semantic_type": "type/FK", "fk_target_field_id": float64(90), "table_id": float64(4),
		"description": "Buyer", "created_at": "2025-01-01T00:00:00Z",
		"table": map[string]any{"id": float64(4), "name": "ORDERS", "schema": "PUBLIC", "db_id": float64(1), "rows": float64(18760)},
	}

	standard := Field(raw, Standard, retrievedAt)
	assert.Equal(t, map[string]any{"id": float64(4), "name": "ORDERS", "schema": "PUBLIC", "db_id": float64(1)}, standard["table"])
	assert.Equal(t, "2025-01-01T00:00:00Z", standard["created_at"])

	aggressive := Field(raw, Aggressive, retrievedAt)
	assert.Equal(t, map[string]any{"id": float64(4), "name": "ORDERS"}, aggressive["table"])
	assert.Equal(t, "Buyer", aggressive["description"])
	assert.NotContains(t, aggressive, "created_at")

	ultra := Field(raw, UltraMinimal, retrievedAt)
	assert.Equal(t, map[string]any{
		"id": float64(41), "name": "USER_ID", "base_type": "type/Integer", "table_id": float64(4),
		"semantic_type": "type/FK", "fk_target_field_id": float64(90), "retrieved_at": retrievedAtText,
	}, ultra)
}

func rawDatabase(tables int) map[string]any {
	list := make([]any, tables)
	for i := range list {
		list[i] = map[string]any{
			"id": float64(i + 1), "name": "T" + string(rune('A'+i%26)), "schema": "PUBLIC",
			"description": "table", "fields": []any{map[string]any{"id": float64(1)}},
		}
	}
	return map[string]any{
		"id":          float64(1),
		"name":        "Warehouse",
		"engine":      "postgres",
		"description": "Main warehouse",
		"timezone":    "UTC",
		"details":     map[string]any{"host": "db.internal", "password": "secret"},
		"tables":      list,
	}
}

func TestDatabase_Unpaginated(t *testing.T) {
	shaped, meta := Database(rawDatabase(30), Standard, retrievedAt, Page{})

	assert.Nil(t, meta)
	assert.NotContains(t, shaped, "pagination")
	assert.NotContains(t, shaped, "details")
	assert.Equal(t, "UTC", shaped["timezone"])
	tables := shaped["tables"].([]any)
	assert.Len(t, tables, 30)
	assert.NotContains(t, tables[0].(map[string]any), "fields")
}

func TestDatabase_Paginated(t *testing.T) {
	limit := 20
	shaped, meta := Database(rawDatabase(50), Aggressive, retrievedAt, Page{Offset: 10, Limit: &limit})

	require.NotNil(t, meta)
	assert.Equal(t, meta, shaped["pagination"])
	assert.Equal(t, 20, meta.CurrentPageSize)
	assert.True(t, meta.HasMore)
	require.NotNil(t, meta.NextOffset)
	assert.Equal(t, 30, *meta.NextOffset)

	tables := shaped["tables"].([]any)
	require.Len(t, tables, 20)
	assert.Equal(t, float64(11), tables[0].(map[string]any)["id"], "first table is index 10")
	assert.Equal(t, "table", tables[0].(map[string]any)["description"])
	assert.NotContains(t, shaped, "details")
}

func TestDatabase_LimitHundred(t *testing.T) {
	limit := 100
	shaped, meta := Database(rawDatabase(120), UltraMinimal, retrievedAt, Page{Limit: &limit})

	require.NotNil(t, meta)
	assert.Len(t, shaped["tables"], 100)
	assert.Equal(t, 120, meta.TotalTables)
	assert.NotContains(t, shaped["tables"].([]any)[0].(map[string]any), "description")
}

func TestCollection_GroupsItems(t *testing.T) {
	raw := map[string]any{
		"id":          float64(3),
		"name":        "Sales",
		"description": "Sales team",
		"location":    "/1/",
		"created_at":  "2025-01-01T00:00:00Z",
		"items": []any{
			map[string]any{"id": float64(12), "name": "Orders", "model": "card", "display": "bar",
				"last-edit-info": map[string]any{"timestamp": "2025-03-01T00:00:00Z"}},
			map[string]any{"id": float64(13), "name": "Order model", "model": "dataset"},
			map[string]any{"id": float64(14), "name": "Revenue", "model": "metric"},
			map[string]any{"id": float64(7), "name": "Overview", "model": "dashboard"},
			map[string]any{"id": float64(9), "name": "Archive", "model": "collection"},
			map[string]any{"id": float64(2), "name": "Snippet", "model": "snippet"},
		},
	}

	shaped := Collection(raw, Standard, retrievedAt)
	items := shaped["items"].(map[string]any)

	assert.Len(t, items["cards"], 3)
	assert.Len(t, items["dashboards"], 1)
	assert.Len(t, items["collections"], 1)
	assert.Len(t, items["other"], 1)
	assert.Equal(t, 6, items["total_count"])

	first := items["cards"].([]any)[0].(map[string]any)
	assert.Equal(t, "2025-03-01T00:00:00Z", first["last_edited_at"])
	assert.Equal(t, "bar", first["display"])

	ultra := Collection(raw, UltraMinimal, retrievedAt)
	assert.NotContains(t, ultra, "description")
	assert.NotContains(t, ultra, "location")
	ultraFirst := ultra["items"].(map[string]any)["cards"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"id": float64(12), "name": "Orders", "model": "card"}, ultraFirst)
}

func TestCollection_PagedItemsAndNoItems(t *testing.T) {
	paged := Collection(map[string]any{
		"id": float64(3), "name": "Sales",
		"items": map[string]any{"data": []any{map[string]any{"id": float64(1), "model": "dashboard"}}, "total": float64(1)},
	}, Aggressive, retrievedAt)
	items := paged["items"].(map[string]any)
	assert.Len(t, items["dashboards"], 1)
	assert.Equal(t, []any{}, items["cards"])
	assert.Equal(t, 1, items["total_count"])

	bare := Collection(map[string]any{"id": float64(3), "name": "Sales"}, Aggressive, retrievedAt)
	assert.NotContains(t, bare, "items")
}
