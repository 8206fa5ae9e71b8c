package optimize

import (
	"time"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/pagination"
)

// Page selects a window of a database's tables. A nil Limit returns all
// tables without pagination metadata.
type Page struct {
	Offset int
	Limit  *int
}

// Database shapes a database and a page of its tables. Connection details
// are never emitted. The returned metadata is nil when no limit was given.
func Database(raw map[string]any, level Level, at time.Time, page Page) (map[string]any, *pagination.Metadata) {
	out := map[string]any{}
	pick(out, raw, "id", "name", "engine")

	switch level {
	case Standard:
		pick(out, raw, "description", "timezone", "is_sample", "created_at", "updated_at")
	case Aggressive:
		pick(out, raw, "description")
	}

	var meta *pagination.Metadata
	if _, hasTables := raw["tables"]; hasTables || page.Limit != nil {
		var tables []map[string]any
		tables, meta = pagination.Slice(mapsOf(raw["tables"]), page.Offset, page.Limit)

		shaped := make([]any, 0, len(tables))
		for _, table := range tables {
			shaped = append(shaped, tableSummary(table, level))
		}
		out["tables"] = shaped
		if meta != nil {
			out["pagination"] = meta
		}
	}

	stamp(out, at)
	return out, meta
}
