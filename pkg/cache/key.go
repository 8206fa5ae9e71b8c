package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "metabase"

// Key identifies one cached upstream resource.
type Key struct {
	// Resource is the resource kind (e.g. "card", "collection_items").
	Resource string

	// ID is the resource identifier.
	ID int

	// Query holds query parameters that change the upstream payload (e.g. include=tables).
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: metabase:resource:id:query1=val1:query2=val2
//
// Example:
//
//	metabase:database:3:include=tables
func (k Key) String() string {
	parts := []string{KeyPrefix, strings.Trim(k.Resource, ":"), fmt.Sprintf("%d", k.ID)}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
