package optimize

import "time"

// Field shapes a single field with a reference to its table.
func Field(raw map[string]any, level Level, at time.Time) map[string]any {
	out := shapeColumn(raw, level)
	pick(out, raw, "table_id")

	switch level {
	case Standard:
		pick(out, raw, "created_at", "updated_at")
		if table, ok := asMap(raw["table"]); ok {
			ref := map[string]any{}
			pick(ref, table, "id", "name", "schema", "display_name", "db_id")
			out["table"] = ref
		}
	case Aggressive:
		if table, ok := asMap(raw["table"]); ok {
			ref := map[string]any{}
			pick(ref, table, "id", "name")
			out["table"] = ref
		}
	}

	stamp(out, at)
	return out
}
