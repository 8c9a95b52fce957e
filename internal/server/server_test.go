package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barstack/pkg/cache"
	"github.com/matzehuels/barstack/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.NewWithOptions(io.Discard, log.Options{}))
	t.Cleanup(func() { runner.Close() })
	return New(Config{
		Addr:   ":0",
		Runner: runner,
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
}

func renderBody(format string) []byte {
	body := map[string]any{
		"rows": []any{
			map[string]any{"region": "EU", "q1": 12.5},
			map[string]any{"region": "US", "q1": 9.0},
		},
		"chart": map[string]any{
			"label":  "region",
			"values": []any{"q1"},
		},
	}
	if format != "" {
		body["format"] = format
	}
	data, _ := json.Marshal(body)
	return data
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRenderJSONFormat(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(renderBody("json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("response has no ETag")
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if out["mode"] != "basic" {
		t.Errorf("mode = %v, want basic", out["mode"])
	}
}

func TestRenderDefaultsToSVG(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(renderBody("")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body does not look like SVG")
	}
}

func TestRenderBadRequests(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "not json", body: "{", want: http.StatusBadRequest},
		{name: "no rows", body: `{"chart": {"label": "a", "values": ["v"]}}`, want: http.StatusBadRequest},
		{name: "no chart", body: `{"rows": [{"a": 1}]}`, want: http.StatusBadRequest},
		{name: "bad format", body: `{"rows": [{"a": 1}], "chart": {"label": "a", "values": ["v"]}, "format": "pdf"}`, want: http.StatusBadRequest},
		{
			name: "missing key",
			body: `{"rows": [{"a": 1}], "chart": {"label": "region", "values": ["a"]}}`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}

			var out map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if out["code"] == "" {
				t.Error("error body has no code")
			}
		})
	}
}

func TestChartEndpointsWithoutStore(t *testing.T) {
	srv := testServer(t)

	for _, tc := range []struct {
		method string
		path   string
		body   io.Reader
	}{
		{http.MethodPost, "/charts", bytes.NewReader(renderBody(""))},
		{http.MethodGet, "/charts/abc", nil},
		{http.MethodDelete, "/charts/abc", nil},
	} {
		req := httptest.NewRequest(tc.method, tc.path, tc.body)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s status = %d, want 503", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response has no request ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "client-id")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "client-id" {
		t.Errorf("request ID = %q, want client-id", got)
	}
}
