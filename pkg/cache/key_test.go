package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "card",
			key:  Key{Resource: "card", ID: 42},
			want: "metabase:card:42",
		},
		{
			name: "database with include",
			key: Key{
				Resource: "database",
				ID:       3,
				Query:    url.Values{"include": []string{"tables"}},
			},
			want: "metabase:database:3:include=tables",
		},
		{
			name: "query params sorted",
			key: Key{
				Resource: "collection_items",
				ID:       7,
				Query: url.Values{
					"models":   []string{"card"},
					"archived": []string{"false"},
				},
			},
			want: "metabase:collection_items:7:archived=false:models=card",
		},
		{
			name: "resource colons trimmed",
			key:  Key{Resource: ":field:", ID: 9},
			want: "metabase:field:9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Resource: "database",
		ID:       1,
		Query:    url.Values{"b": []string{"2"}, "a": []string{"1"}, "c": []string{"3"}},
	}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}
