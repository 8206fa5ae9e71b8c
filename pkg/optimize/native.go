package optimize

// NativeStageType marks a native SQL stage in a staged dataset query.
const NativeStageType = "mbql.stage/native"

// ExtractNative returns {"query", "template_tags"} for a dataset query that
// carries native SQL, or nil for structured queries.
//
// Two shapes are accepted:
//
//	{"native": {"query": "...", "template-tags": {...}}}
//	{"stages": [{"lib/type": "mbql.stage/native", "native": "...", "template-tags": {...}}]}
func ExtractNative(datasetQuery any) map[string]any {
	dq, ok := asMap(datasetQuery)
	if !ok {
		return nil
	}

	if native, ok := asMap(dq["native"]); ok {
		if query, ok := native["query"].(string); ok {
			return nativeBlock(query, native)
		}
	}

	for _, stage := range mapsOf(dq["stages"]) {
		if stage["lib/type"] != NativeStageType {
			continue
		}
		query, ok := stage["native"].(string)
		if !ok {
			return nil
		}
		return nativeBlock(query, stage)
	}

	return nil
}

func nativeBlock(query string, src map[string]any) map[string]any {
	tags, ok := asMap(src["template-tags"])
	if !ok {
		tags, ok = asMap(src["template_tags"])
	}
	if !ok {
		tags = map[string]any{}
	}
	return map[string]any{
		"query":         query,
		"template_tags": tags,
	}
}
