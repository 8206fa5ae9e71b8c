package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhonorato-ship-it/metabase-mcp/internal/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_NoCache(t *testing.T) {
	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	readyHandler(nil)(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 without a cache, got %d", w.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	redisClient := testutil.StartRedis(t)
	handler := readyHandler(redisClient)

	t.Run("ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/ready", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		redisClient.Close()

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/ready", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newMux(nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "# HELP") || !strings.Contains(body, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	// unlabeled metrics are exported before any request is made
	if !strings.Contains(body, "metabase_rate_limit_pauses_total") {
		t.Error("Expected metrics output to contain metabase_rate_limit_pauses_total")
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		input   string
		want    []any
		wantErr bool
	}{
		{input: "1,2,3", want: []any{1, 2, 3}},
		{input: " 4 , 5 ,", want: []any{4, 5}},
		{input: "", want: nil},
		{input: "1,x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseIDs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseIDs(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseIDs(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRetrieveCommand(t *testing.T) {
	mock := testutil.NewMockMetabase()
	defer mock.Close()
	mock.SetJSON("/api/card/1", map[string]any{"id": 1, "name": "Orders"})

	t.Setenv("METABASE_URL", mock.URL())
	t.Setenv("METABASE_API_KEY", "cli-key")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"retrieve", "--model", "card", "--ids", "1,2"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp struct {
		Successful int `json:"successful_retrievals"`
		Failed     int `json:"failed_retrievals"`
		Errors     []struct {
			ID int `json:"id"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
	if resp.Successful != 1 || resp.Failed != 1 {
		t.Errorf("successful/failed = %d/%d, want 1/1", resp.Successful, resp.Failed)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].ID != 2 {
		t.Errorf("errors = %+v, want card 2", resp.Errors)
	}
	if mock.LastAPIKey != "cli-key" {
		t.Errorf("X-API-KEY = %q, want cli-key", mock.LastAPIKey)
	}
}
