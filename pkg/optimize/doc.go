// Package optimize shrinks raw Metabase entities so a batch of them fits an
// LLM context window.
//
// A Level is chosen once per request from the batch size (LevelFor) and
// passed to every optimizer. Each optimizer is a pure function of the raw
// entity, the level, and the retrieval time:
//
//	level := optimize.LevelFor(len(ids))
//	shaped := optimize.Card(raw, level, time.Now())
//
// Relationship and semantic fields (semantic_type, fk_target_field_id,
// values_source_type, values_source_config) survive every level. Executable
// query text and template parameters are always kept. Descriptions,
// creator and collection detail, timestamps, and analytics counters are
// dropped progressively as the level rises.
//
// Keys whose raw value is null are treated as absent and never emitted.
package optimize
