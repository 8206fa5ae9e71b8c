package pagination

// Metadata describes one page of a nested list.
type Metadata struct {
	TotalTables     int  `json:"total_tables"`
	TableOffset     int  `json:"table_offset"`
	TableLimit      int  `json:"table_limit"`
	CurrentPageSize int  `json:"current_page_size"`
	HasMore         bool `json:"has_more"`
	NextOffset      *int `json:"next_offset,omitempty"`
}

// Slice returns items[offset:offset+limit] clamped to the list length.
// A nil limit returns all items and nil metadata.
func Slice[T any](items []T, offset int, limit *int) ([]T, *Metadata) {
	if limit == nil {
		return items, nil
	}

	total := len(items)
	if offset < 0 {
		offset = 0
	}

	start := min(offset, total)
	end := min(start+max(*limit, 0), total)

	page := items[start:end]
	meta := &Metadata{
		TotalTables:     total,
		TableOffset:     offset,
		TableLimit:      *limit,
		CurrentPageSize: len(page),
		HasMore:         end < total,
	}
	if meta.HasMore {
		next := end
		meta.NextOffset = &next
	}

	return page, meta
}
