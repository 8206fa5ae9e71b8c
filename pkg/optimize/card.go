package optimize

import "time"

// Card shapes a saved question, model, or metric.
func Card(raw map[string]any, level Level, at time.Time) map[string]any {
	out := map[string]any{}
	pick(out, raw, "id", "name", "type", "display", "query_type", "database_id", "table_id")

	if native := ExtractNative(raw["dataset_query"]); native != nil {
		out["native_query"] = native
	}
	if params := shapeParameters(raw["parameters"], level); params != nil {
		out["parameters"] = params
	}
	if cols := shapeColumns(raw["result_metadata"], level); cols != nil {
		out["result_columns"] = cols
	}

	switch level {
	case Standard:
		pick(out, raw, "description", "collection_id", "archived",
			"created_at", "updated_at", "last_used_at",
			"view_count", "query_average_duration")
	case Aggressive:
		pick(out, raw, "description", "collection_id")
	}
	addContext(out, raw, level)

	stamp(out, at)
	return out
}

// nestedCard is the card embedded in a dashboard card.
func nestedCard(raw map[string]any, level Level) map[string]any {
	out := map[string]any{}
	pick(out, raw, "id", "name", "type", "display", "database_id", "table_id")
	if native := ExtractNative(raw["dataset_query"]); native != nil {
		out["native_query"] = native
	}
	if params := shapeParameters(raw["parameters"], level); params != nil {
		out["parameters"] = params
	}
	if cols := shapeColumns(raw["result_metadata"], level); cols != nil {
		out["result_columns"] = cols
	}
	if level == Standard {
		pick(out, raw, "description")
	}
	return out
}
