package optimize

import "time"

// Collection shapes a collection. When raw has an "items" key (a list or a
// {"data": [...]} page) the items are grouped by kind.
func Collection(raw map[string]any, level Level, at time.Time) map[string]any {
	out := map[string]any{}
	pick(out, raw, "id", "name")

	switch level {
	case Standard:
		pick(out, raw, "description", "location", "slug", "archived",
			"authority_level", "personal_owner_id", "created_at")
	case Aggressive:
		pick(out, raw, "description", "location")
	}

	if items, ok := raw["items"]; ok {
		out["items"] = groupItems(items, level)
	}

	stamp(out, at)
	return out
}

// groupItems buckets collection items into cards, dashboards, collections,
// and other. Models and metrics count as cards.
func groupItems(v any, level Level) map[string]any {
	if page, ok := asMap(v); ok {
		v = page["data"]
	}
	items := mapsOf(v)

	buckets := map[string][]any{
		"cards":       {},
		"dashboards":  {},
		"collections": {},
		"other":       {},
	}
	for _, item := range items {
		bucket := "other"
		switch item["model"] {
		case "card", "dataset", "metric":
			bucket = "cards"
		case "dashboard":
			bucket = "dashboards"
		case "collection":
			bucket = "collections"
		}
		buckets[bucket] = append(buckets[bucket], shapeItem(item, level))
	}

	return map[string]any{
		"cards":       buckets["cards"],
		"dashboards":  buckets["dashboards"],
		"collections": buckets["collections"],
		"other":       buckets["other"],
		"total_count": len(items),
	}
}

func shapeItem(item map[string]any, level Level) map[string]any {
	out := map[string]any{}
	pick(out, item, "id", "name", "model", "database_id")

	if level < UltraMinimal {
		pick(out, item, "description", "display")
	}
	if level == Standard {
		if info, ok := asMap(item["last-edit-info"]); ok {
			if ts := info["timestamp"]; ts != nil {
				out["last_edited_at"] = ts
			}
		}
	}
	return out
}
