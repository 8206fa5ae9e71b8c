// Package pagination slices nested child lists, such as the tables of a
// database, independently of the outer retrieval batch.
//
// Example usage:
//
//	limit := 20
//	page, meta := pagination.Slice(tables, 10, &limit)
//	// meta.HasMore, *meta.NextOffset == 30 for 50 tables
//
// Without a limit the whole list is returned and no metadata is produced:
//   - offset only applies when a limit is given
//   - offsets past the end yield an empty page
//   - next_offset is only set while more items remain
package pagination
