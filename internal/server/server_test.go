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

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/observability"
	"github.com/matzehuels/stageflow/pkg/pipeline"
)

const diamond = `{
  "current": "deploy",
  "stages": [
    {"id": 0, "node_name": "build", "parent_ids": []},
    {"id": 1, "node_name": "test", "parent_ids": [0]},
    {"id": 2, "node_name": "lint", "parent_ids": [0]},
    {"id": 3, "node_name": "deploy", "parent_ids": [1, 2]}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(pipeline.NewRunner(logger), logger, pipeline.Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDReused(t *testing.T) {
	srv := newTestServer(t)
	const id = "4f1c8c1e-8a0b-4c41-9d55-1b2f3f1e9a10"

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid incoming id should be replaced, got %q", got)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/layout", diamond)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var l graph.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}

	if len(l.Nodes) != 4 || len(l.Edges) != 4 {
		t.Fatalf("got %d nodes, %d edges", len(l.Nodes), len(l.Edges))
	}
	if l.CurrentID == nil || *l.CurrentID != 3 {
		t.Errorf("current_id = %v, want 3", l.CurrentID)
	}
	for _, e := range l.Edges {
		if !e.Active {
			t.Errorf("edge %d→%d should be active", e.Source, e.Target)
		}
	}
	if l.Layers != 3 {
		t.Errorf("layers = %d, want 3", l.Layers)
	}
}

func TestLayoutBareArray(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/layout", `[{"id": 7, "node_name": "only", "parent_ids": []}]`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var l graph.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 1 || l.Nodes[0].State != "future" {
		t.Errorf("nodes = %+v", l.Nodes)
	}
}

func TestLayoutOptions(t *testing.T) {
	srv := newTestServer(t)
	body := `{
	  "stages": [
	    {"id": 0, "node_name": "a", "parent_ids": []},
	    {"id": 1, "node_name": "b", "parent_ids": [0]}
	  ],
	  "options": {"orientation": "vertical", "layer_spacing": 50, "margin": 10}
	}`
	resp := post(t, srv.URL+"/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var l graph.Layout
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if l.Orientation != "vertical" {
		t.Errorf("orientation = %q", l.Orientation)
	}
	if l.Nodes[1].Y != 60 {
		t.Errorf("second node y = %v, want 60", l.Nodes[1].Y)
	}
}

func TestLayoutErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "cycle",
			body:   `[{"id":0,"node_name":"a","parent_ids":[1]},{"id":1,"node_name":"b","parent_ids":[0]}]`,
			status: http.StatusUnprocessableEntity,
			code:   "MALFORMED_GRAPH",
		},
		{
			name:   "duplicate",
			body:   `[{"id":0,"node_name":"a","parent_ids":[]},{"id":0,"node_name":"b","parent_ids":[]}]`,
			status: http.StatusUnprocessableEntity,
			code:   "DUPLICATE_NODE",
		},
		{
			name:   "bad json",
			body:   `{"stages": [`,
			status: http.StatusBadRequest,
			code:   "INVALID_FORMAT",
		},
		{
			name:   "bad option",
			body:   `{"stages": [], "options": {"orientation": "diagonal"}}`,
			status: http.StatusBadRequest,
			code:   "INVALID_OPTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/layout", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decodeError(t, resp)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q (error %q)", e.Code, tt.code, e.Error)
			}
			if e.RequestID == "" {
				t.Error("missing request_id in error body")
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t)
	label := strings.Repeat("x", maxRequestBodySize)
	body := `[{"id": 0, "node_name": "` + label + `", "parent_ids": []}]`

	for _, path := range []string{"/v1/layout", "/v1/render", "/v1/select"} {
		t.Run(path, func(t *testing.T) {
			resp := post(t, srv.URL+path, body)
			if resp.StatusCode != http.StatusRequestEntityTooLarge {
				t.Errorf("status = %d, want 413", resp.StatusCode)
			}
		})
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"", "application/json", `"nodes"`},
		{"json", "application/json", `"edges"`},
		{"dot", "text/vnd.graphviz; charset=utf-8", "digraph"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			url := srv.URL + "/v1/render"
			if tt.format != "" {
				url += "?format=" + tt.format
			}
			resp := post(t, url, diamond)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/render?format=pdf", diamond)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != "INVALID_FORMAT" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestSelect(t *testing.T) {
	srv := newTestServer(t)
	stages := `[{"id":0,"node_name":"draft","parent_ids":[]},{"id":1,"node_name":"review","parent_ids":[0]}]`

	resp := post(t, srv.URL+"/v1/select", `{"stages": `+stages+`, "node_id": 1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var sel selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&sel); err != nil {
		t.Fatal(err)
	}
	if sel.NodeID != 1 || sel.Stage != "review" {
		t.Errorf("select = %+v", sel)
	}

	resp = post(t, srv.URL+"/v1/select", `{"stages": `+stages+`, "node_id": 9}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}

	resp = post(t, srv.URL+"/v1/select", `{"stages": `+stages+`}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing node_id status = %d, want 400", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/layout")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t)
	post(t, srv.URL+"/v1/select", `{"stages": [], "node_id": 1}`)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []int{http.StatusNotFound, http.StatusOK}
	if len(hooks.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", hooks.statuses, want)
	}
	for i := range want {
		if hooks.statuses[i] != want[i] {
			t.Errorf("statuses = %v, want %v", hooks.statuses, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("uncoded error status = %d, want 500", got)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(nil, logger, pipeline.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
