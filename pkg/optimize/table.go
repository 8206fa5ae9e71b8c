package optimize

import "time"

// Table shapes a table with its full field list.
func Table(raw map[string]any, level Level, at time.Time) map[string]any {
	out := tableSummary(raw, level)
	pick(out, raw, "db_id")

	fields := shapeColumns(raw["fields"], level)
	if fields == nil {
		fields = []any{}
	}
	out["fields"] = fields

	if level == Standard {
		pick(out, raw, "created_at", "updated_at")
	}

	stamp(out, at)
	return out
}

// tableSummary is the table shape used inside a database listing.
func tableSummary(raw map[string]any, level Level) map[string]any {
	out := map[string]any{}
	pick(out, raw, "id", "name", "schema")

	if level < UltraMinimal {
		pick(out, raw, "display_name", "description")
	}
	if level == Standard {
		pick(out, raw, "entity_type", "visibility_type", "estimated_row_count")
	}
	return out
}
