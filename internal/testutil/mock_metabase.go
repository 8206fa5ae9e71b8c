// Package testutil provides testing utilities for the Metabase MCP server.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockMetabase is a configurable mock of the Metabase REST API.
type MockMetabase struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	counts   map[string]int

	// Tracking
	RequestCount  int
	LastAPIKey    string
	LastUserAgent string
}

// NewMockMetabase creates a new mock server. Unknown paths answer 404 with a
// Metabase-style plain text body.
func NewMockMetabase() *MockMetabase {
	mock := &MockMetabase{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		counts:   make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.counts[r.URL.Path]++
		mock.LastAPIKey = r.Header.Get("X-API-KEY")
		mock.LastUserAgent = r.Header.Get("User-Agent")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not found."))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockMetabase) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMetabase) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockMetabase) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.counts = make(map[string]int)
	m.LastAPIKey = ""
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockMetabase) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockMetabase) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON answers path with 200 and v encoded as JSON.
func (m *MockMetabase) SetJSON(path string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal %s: %v", path, err))
	}
	m.SetResponse(path, NewOKResponse(string(body)))
}

// SetSequence answers path with responses in order, repeating the last one.
func (m *MockMetabase) SetSequence(path string, responses ...MockResponse) {
	var (
		mu   sync.Mutex
		next int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[next]
		if next < len(responses)-1 {
			next++
		}
		mu.Unlock()

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockMetabase) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// PathCount returns how many requests hit path.
func (m *MockMetabase) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// NewOKResponse creates a 200 OK JSON response.
func NewOKResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 response as Metabase sends it.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       "Not found.",
		Headers: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Too many requests"}`,
		Headers: map[string]string{
			"Retry-After":  retryAfter,
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewForbiddenResponse creates a 403 response.
func NewForbiddenResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       "You don't have permissions to do that.",
		Headers: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
	}
}
