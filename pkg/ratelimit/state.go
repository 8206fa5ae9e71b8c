// Package ratelimit paces requests to the Metabase API. A token bucket bounds
// the steady request rate, and a 429 response pauses every caller until the
// server's Retry-After window has elapsed.
package ratelimit

import (
	"time"
)

// Defaults for request pacing.
const (
	// DefaultRequestsPerSecond is the steady request rate.
	DefaultRequestsPerSecond = 10.0

	// DefaultBurst is the token bucket size. It matches the largest batch
	// window so a full window can start without waiting.
	DefaultBurst = 8

	// DefaultRetryAfter is the pause applied when a 429 carries no usable Retry-After.
	DefaultRetryAfter = 1 * time.Second

	// MaxRetryAfter caps how long a single 429 can pause requests.
	MaxRetryAfter = 60 * time.Second
)

// State represents the current pacing state.
type State struct {
	// PausedUntil is when requests may resume after a 429. Zero when not paused.
	PausedUntil time.Time `json:"paused_until"`

	// LastStatus is the HTTP status of the most recent response seen.
	LastStatus int `json:"last_status"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`
}

// IsPaused returns true while a 429 cool-down is in effect.
func (s *State) IsPaused() bool {
	return time.Now().Before(s.PausedUntil)
}

// TimeUntilResume returns the remaining cool-down.
// Returns 0 if requests may proceed.
func (s *State) TimeUntilResume() time.Duration {
	d := time.Until(s.PausedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// IsStale returns true if the state has not been updated for maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}
