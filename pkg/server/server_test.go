package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/trackgrid/pkg/document"
	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/observability"
)

const sampleDoc = `{
  "width": 300,
  "height": 200,
  "tracks": ["1fr", "1fr", "100"],
  "items": [
    {"id": "a", "natural": {"width": 40, "height": 20}},
    {"id": "b", "span": {"columns": 2, "rows": 1}, "natural": {"width": 40, "height": 20}},
    {"id": "c", "label": "Charlie", "natural": {"width": 40, "height": 20}}
  ]
}`

const sampleTOML = `
width = 300
height = 200
tracks = ["1fr", "1fr", "100"]

[[items]]
id = "a"

[[items]]
id = "b"
span = { columns = 2, rows = 1 }
`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int, code errs.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	body := decode[errorBody](t, resp)
	if body.Code != code {
		t.Errorf("code = %s, want %s (message %q)", body.Code, code, body.Message)
	}
}

func TestHealthAndVersion(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", resp.StatusCode)
	}
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("GET /healthz body = %v", got)
	}

	resp = do(t, http.MethodGet, ts.URL+"/version", "", "")
	if got := decode[map[string]string](t, resp); got["version"] == "" || got["go_version"] == "" {
		t.Errorf("GET /version body = %v", got)
	}
}

func TestArrange(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/arrange", "application/json", sampleDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Layout-Hash") == "" {
		t.Error("missing X-Layout-Hash")
	}
	data, _ := io.ReadAll(resp.Body)
	l, err := document.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(l.Items) != 3 || len(l.Columns) != 3 {
		t.Errorf("layout has %d items and %d columns, want 3 and 3", len(l.Items), len(l.Columns))
	}
	if it, ok := l.Item("c"); !ok || it.Label != "Charlie" {
		t.Errorf("Item(c) = %+v, %v", it, ok)
	}
}

func TestArrangeFormats(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query       string
		contentType string
		want        string
	}{
		{"?format=svg", "image/svg+xml", "<svg"},
		{"?format=svg&cells&guides", "image/svg+xml", "<svg"},
		{"?format=dot", "text/vnd.graphviz", "graph G {"},
		{"?format=txt&width=40", "text/plain; charset=utf-8", "┌"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/arrange"+tt.query, "application/json", sampleDoc)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body does not contain %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestArrangeTOML(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/arrange", "application/toml", sampleTOML)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	l := decode[document.Layout](t, resp)
	if len(l.Items) != 2 {
		t.Errorf("got %d items, want 2", len(l.Items))
	}

	nan := "width = nan\ntracks = [\"1fr\"]\n"
	expectError(t, do(t, http.MethodPost, ts.URL+"/v1/arrange", "application/toml", nan),
		http.StatusBadRequest, errs.ErrCodeInvalidInput)
}

func TestArrangeErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   errs.Code
	}{
		{"empty body", "", "", http.StatusBadRequest, errs.ErrCodeInvalidDocument},
		{"bad json", "", "{", http.StatusBadRequest, errs.ErrCodeInvalidDocument},
		{"bad format", "?format=gif", sampleDoc, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"bad scale", "?format=png&scale=x", sampleDoc, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad track", "", `{"tracks": ["wide"]}`, http.StatusUnprocessableEntity, errs.ErrCodeInvalidTrackSpec},
		{"no tracks", "", `{"tracks": []}`, http.StatusUnprocessableEntity, errs.ErrCodeInvalidColumnCount},
		{"span too wide", "", `{"tracks": ["1fr"], "items": [{"span": {"columns": 2, "rows": 1}}]}`,
			http.StatusUnprocessableEntity, errs.ErrCodeSpanExceedsGridWidth},
		{"overlap", "", `{"tracks": ["1fr", "1fr"], "items": [
			{"id": "x", "start": {"column": 0, "row": 0}},
			{"id": "y", "start": {"column": 0, "row": 0}}]}`,
			http.StatusUnprocessableEntity, errs.ErrCodeOverlappingExplicitPlacement},
		{"too narrow", "", `{"width": 50, "tracks": ["100"]}`, http.StatusUnprocessableEntity, errs.ErrCodeInsufficientSpace},
		{"huge start row", "", `{"tracks": ["1fr"], "items": [{"start": {"column": 0, "row": 2147483648}}]}`,
			http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"huge row span", "", `{"tracks": ["1fr"], "items": [{"span": {"columns": 1, "rows": 9000000000}}]}`,
			http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"negative span", "", `{"tracks": ["1fr"], "items": [{"span": {"columns": -1, "rows": 1}}]}`,
			http.StatusBadRequest, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/arrange"+tt.query, "application/json", tt.body)
			expectError(t, resp, tt.status, tt.code)
		})
	}
}

func TestArrangeBodyLimit(t *testing.T) {
	s := New(Config{MaxBodyBytes: 16})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := do(t, http.MethodPost, ts.URL+"/v1/arrange", "application/json", sampleDoc)
	expectError(t, resp, http.StatusBadRequest, errs.ErrCodeInvalidInput)
}

func TestGridLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/grids", "", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /v1/grids = %d, want 201", resp.StatusCode)
	}
	id := decode[gridResponse](t, resp).ID
	if err := errs.ValidateGridID(id); err != nil {
		t.Fatalf("grid id %q: %v", id, err)
	}
	gridURL := ts.URL + "/v1/grids/" + id

	list := decode[gridListResponse](t, do(t, http.MethodGet, ts.URL+"/v1/grids", "", ""))
	if len(list.Grids) != 1 || list.Grids[0] != id {
		t.Errorf("GET /v1/grids = %v, want [%s]", list.Grids, id)
	}

	expectError(t, do(t, http.MethodGet, gridURL, "", ""), http.StatusNotFound, errs.ErrCodeNotFound)

	resp = do(t, http.MethodPut, gridURL, "application/json", sampleDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT = %d, want 200", resp.StatusCode)
	}
	first := decode[document.Layout](t, resp)
	if first.GridID != id {
		t.Errorf("GridID = %q, want %q", first.GridID, id)
	}

	narrow := strings.Replace(sampleDoc, `"width": 300`, `"width": 50`, 1)
	resp = do(t, http.MethodPut, gridURL, "application/json", narrow)
	if resp.Header.Get("X-Previous-Arrangement") != "kept" {
		t.Error("failed PUT should report the kept arrangement")
	}
	expectError(t, resp, http.StatusUnprocessableEntity, errs.ErrCodeInsufficientSpace)

	got := decode[document.Layout](t, do(t, http.MethodGet, gridURL, "", ""))
	if got.Width != 300 || len(got.Items) != len(first.Items) {
		t.Errorf("GET after failed PUT = width %v with %d items, want the previous arrangement", got.Width, len(got.Items))
	}

	resp = do(t, http.MethodGet, gridURL+"?format=txt", "", "")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("GET ?format=txt Content-Type = %q", ct)
	}

	resp = do(t, http.MethodDelete, gridURL, "", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", resp.StatusCode)
	}
	expectError(t, do(t, http.MethodGet, gridURL, "", ""), http.StatusNotFound, errs.ErrCodeGridNotFound)
	expectError(t, do(t, http.MethodDelete, gridURL, "", ""), http.StatusNotFound, errs.ErrCodeGridNotFound)
}

func TestGridErrors(t *testing.T) {
	_, ts := newTestServer(t)

	expectError(t, do(t, http.MethodGet, ts.URL+"/v1/grids/not-a-uuid", "", ""), http.StatusBadRequest, errs.ErrCodeInvalidID)
	expectError(t, do(t, http.MethodPut, ts.URL+"/v1/grids/"+string(grid.NewGridID()), "application/json", sampleDoc),
		http.StatusNotFound, errs.ErrCodeGridNotFound)
	expectError(t, do(t, http.MethodGet, ts.URL+"/nowhere", "", ""), http.StatusNotFound, errs.ErrCodeNotFound)

	created := decode[gridResponse](t, do(t, http.MethodPost, ts.URL+"/v1/grids", "", ""))
	huge := `{"tracks": ["1fr", "1fr"], "items": [{"start": {"column": 0, "row": 2147483648}}]}`
	expectError(t, do(t, http.MethodPut, ts.URL+"/v1/grids/"+created.ID, "application/json", huge),
		http.StatusBadRequest, errs.ErrCodeInvalidInput)
}

func TestGridsAreIndependent(t *testing.T) {
	s, ts := newTestServer(t)
	a := s.registry.Create()
	b := s.registry.Create()

	narrow := strings.Replace(sampleDoc, `"width": 300`, `"width": 50`, 1)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPut, ts.URL+"/v1/grids/"+string(a.ID()), strings.NewReader(sampleDoc))
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPut, ts.URL+"/v1/grids/"+string(b.ID()), strings.NewReader(narrow))
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	if a.Last() == nil || a.Err() != nil {
		t.Errorf("grid a: Last() = %v, Err() = %v, want a result", a.Last(), a.Err())
	}
	if b.Last() != nil || !errs.Is(b.Err(), errs.ErrCodeInsufficientSpace) {
		t.Errorf("grid b: Last() = %v, Err() = %v, want only failures", b.Last(), b.Err())
	}
}

func TestRequestID(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response should carry a generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc" {
		t.Errorf("%s = %q, want abc", RequestIDHeader, got)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)

	_, ts := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	do(t, http.MethodPost, ts.URL+"/v1/arrange", "application/json", "{")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 2 || rec.statuses[0] != http.StatusOK || rec.statuses[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v, want [200 400]", rec.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", New(Config{}).Handler())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
