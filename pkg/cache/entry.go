package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached upstream response body.
type Entry struct {
	// Data is the raw JSON body returned by the upstream API.
	Data json.RawMessage `json:"data"`

	// CachedAt is when we cached this response.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry builds an entry for data that stays fresh for ttl.
func NewEntry(data []byte, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:     json.RawMessage(data),
		CachedAt: now,
		Expires:  now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
