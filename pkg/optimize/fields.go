package optimize

import (
	"strings"
	"time"
)

// RelationshipKeys are kept at every level whenever the raw entity has them.
var RelationshipKeys = []string{
	"semantic_type",
	"fk_target_field_id",
	"values_source_type",
	"values_source_config",
}

// pick copies the non-null values of keys from src into dst.
func pick(dst, src map[string]any, keys ...string) {
	for _, k := range keys {
		if v, ok := src[k]; ok && v != nil {
			dst[k] = v
		}
	}
}

func keepRelationships(dst, src map[string]any) {
	pick(dst, src, RelationshipKeys...)
}

func stamp(dst map[string]any, at time.Time) {
	dst["retrieved_at"] = at.UTC().Format(time.RFC3339)
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// mapsOf returns the object elements of v, skipping anything else.
func mapsOf(v any) []map[string]any {
	items := asSlice(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// userRef shapes a creator object. Full adds the email.
func userRef(v any, full bool) map[string]any {
	user, ok := asMap(v)
	if !ok {
		return nil
	}

	ref := map[string]any{}
	pick(ref, user, "id")
	if name := displayName(user); name != "" {
		ref["name"] = name
	}
	if full {
		pick(ref, user, "email")
	}
	if len(ref) == 0 {
		return nil
	}
	return ref
}

func displayName(user map[string]any) string {
	if name, ok := user["common_name"].(string); ok && name != "" {
		return name
	}
	first, _ := user["first_name"].(string)
	last, _ := user["last_name"].(string)
	return strings.TrimSpace(first + " " + last)
}

// collectionRef shapes a parent collection object. Full adds its location.
func collectionRef(v any, full bool) map[string]any {
	coll, ok := asMap(v)
	if !ok {
		return nil
	}

	ref := map[string]any{}
	pick(ref, coll, "id", "name")
	if full {
		pick(ref, coll, "location")
	}
	if len(ref) == 0 {
		return nil
	}
	return ref
}

// addContext adds creator and collection detail for the Standard and
// Aggressive levels.
func addContext(out, raw map[string]any, level Level) {
	if level == UltraMinimal {
		return
	}
	full := level == Standard
	if creator := userRef(raw["creator"], full); creator != nil {
		out["creator"] = creator
	}
	if coll := collectionRef(raw["collection"], full); coll != nil {
		out["collection"] = coll
	}
}

// shapeParameters keeps what query execution needs from a parameter list.
func shapeParameters(v any, level Level) []any {
	params := mapsOf(v)
	if len(params) == 0 {
		return nil
	}

	out := make([]any, 0, len(params))
	for _, p := range params {
		shaped := map[string]any{}
		pick(shaped, p, "id", "slug", "type", "target", "default", "required")
		if level < UltraMinimal {
			pick(shaped, p, "name")
		}
		keepRelationships(shaped, p)
		out = append(out, shaped)
	}
	return out
}

// shapeColumn shapes one table field or result column.
func shapeColumn(col map[string]any, level Level) map[string]any {
	out := map[string]any{}
	pick(out, col, "id", "name", "base_type")
	keepRelationships(out, col)

	if level < UltraMinimal {
		pick(out, col, "display_name", "description", "database_type")
	}
	if level == Standard {
		pick(out, col, "effective_type", "visibility_type", "has_field_values", "position")
	}
	return out
}

func shapeColumns(v any, level Level) []any {
	cols := mapsOf(v)
	if len(cols) == 0 {
		return nil
	}

	out := make([]any, 0, len(cols))
	for _, col := range cols {
		out = append(out, shapeColumn(col, level))
	}
	return out
}
