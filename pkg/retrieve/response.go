package retrieve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rhonorato-ship-it/metabase-mcp/pkg/pagination"
)

// Response is the aggregate reply of one retrieval call.
type Response struct {
	Results              []map[string]any `json:"results"`
	SuccessfulRetrievals int              `json:"successful_retrievals"`
	FailedRetrievals     int              `json:"failed_retrievals"`
	Source               SourceCounts     `json:"source"`
	UsageGuidance        string           `json:"usage_guidance,omitempty"`
	Errors               []ItemError      `json:"errors,omitempty"`
}

// SourceCounts tallies where successful items came from.
type SourceCounts struct {
	Cache int `json:"cache"`
	API   int `json:"api"`
}

// ItemError is one failed ID.
type ItemError struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// JSON returns the response as indented JSON.
func (r *Response) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

// pagedDatabase records the pagination applied to one database.
type pagedDatabase struct {
	id   int
	meta *pagination.Metadata
}

// usageGuidance tells the caller how to page through database tables.
func usageGuidance(pages []pagedDatabase) string {
	var b strings.Builder
	b.WriteString("Database tables are paginated. Use table_offset and table_limit to fetch further pages.")
	for _, p := range pages {
		fmt.Fprintf(&b, " Database %d: showing %d of %d tables from offset %d",
			p.id, p.meta.CurrentPageSize, p.meta.TotalTables, p.meta.TableOffset)
		if p.meta.NextOffset != nil {
			fmt.Fprintf(&b, "; next page with table_offset=%d, table_limit=%d.", *p.meta.NextOffset, p.meta.TableLimit)
		} else {
			b.WriteString("; this is the last page.")
		}
	}
	return b.String()
}
