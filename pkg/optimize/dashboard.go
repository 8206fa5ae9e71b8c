package optimize

import "time"

// Dashboard shapes a dashboard and its dashboard cards. The legacy
// ordered_cards key is read when dashcards is missing.
func Dashboard(raw map[string]any, level Level, at time.Time) map[string]any {
	out := map[string]any{}
	pick(out, raw, "id", "name")

	if params := shapeParameters(raw["parameters"], level); params != nil {
		out["parameters"] = params
	}

	dashcards, ok := raw["dashcards"]
	if !ok || dashcards == nil {
		dashcards = raw["ordered_cards"]
	}
	cards := mapsOf(dashcards)
	shaped := make([]any, 0, len(cards))
	for _, dc := range cards {
		shaped = append(shaped, shapeDashcard(dc, level))
	}
	out["dashcards"] = shaped

	switch level {
	case Standard:
		pick(out, raw, "description", "collection_id", "archived",
			"created_at", "updated_at", "view_count")
		if tabs := shapeTabs(raw["tabs"]); tabs != nil {
			out["tabs"] = tabs
		}
	case Aggressive:
		pick(out, raw, "description", "collection_id")
		if tabs := shapeTabs(raw["tabs"]); tabs != nil {
			out["tabs"] = tabs
		}
	}
	addContext(out, raw, level)

	stamp(out, at)
	return out
}

func shapeDashcard(dc map[string]any, level Level) map[string]any {
	out := map[string]any{}
	pick(out, dc, "id", "card_id", "dashboard_tab_id", "row", "col", "size_x", "size_y")

	if mappings := asSlice(dc["parameter_mappings"]); len(mappings) > 0 {
		out["parameter_mappings"] = mappings
	}

	if card, ok := asMap(dc["card"]); ok && card["id"] != nil {
		out["card"] = nestedCard(card, level)
	} else if level < UltraMinimal {
		// text and heading cards carry their content in the settings
		if settings, ok := asMap(dc["visualization_settings"]); ok {
			pick(out, settings, "text")
		}
	}
	return out
}

func shapeTabs(v any) []any {
	tabs := mapsOf(v)
	if len(tabs) == 0 {
		return nil
	}
	out := make([]any, 0, len(tabs))
	for _, tab := range tabs {
		shaped := map[string]any{}
		pick(shaped, tab, "id", "name")
		out = append(out, shaped)
	}
	return out
}
