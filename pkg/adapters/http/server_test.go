package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/stepflow/internal/metrics"
	"github.com/aretw0/stepflow/internal/testutils"
	httpadapter "github.com/aretw0/stepflow/pkg/adapters/http"
	"github.com/aretw0/stepflow/pkg/definition"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...httpadapter.Option) *httptest.Server {
	t.Helper()
	reg := testutils.NewRegistry(t)

	srv := httptest.NewServer(httpadapter.NewHandler(session.NewManager(reg), opts...))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	} else {
		out = map[string]any{"body": string(raw)}
	}
	return resp, out
}

func TestServer_Index(t *testing.T) {
	srv := newTestServer(t, httpadapter.WithVersion("1.2.3"))

	resp, body := do(t, srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Contains(t, body["endpoints"], "run_graph")
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ExampleWorkflow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/graph/create/example", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "code_review_workflow", body["graph_id"])
	assert.Equal(t, "Example code review workflow created", body["message"])

	resp, body = do(t, srv, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      "code_review_workflow",
		"initial_state": map[string]any{"code": "def add(a, b):\n    return a + b\n"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])

	runID, ok := body["run_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, runID)

	final := body["final_state"].(map[string]any)
	assert.Equal(t, true, final["quality_met"])
	assert.Len(t, body["execution_log"], 6)

	resp, body = do(t, srv, http.MethodGet, "/graph/state/"+runID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, runID, body["run_id"])
	assert.Equal(t, "code_review_workflow", body["graph_id"])
	assert.Equal(t, "completed", body["status"])

	resp, body = do(t, srv, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["runs"], 1)

	resp, body = do(t, srv, http.MethodGet, "/graphs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["graphs"], 1)
}

func TestServer_CreateGraph(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/graph/create", map[string]any{
		"id": "scoring",
		"nodes": []map[string]any{
			{"name": "complexity", "func": "check_complexity"},
			{"name": "score", "func": "calculate_quality_score"},
		},
		"edges": []map[string]any{{"from": "complexity", "to": "score"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "scoring", body["graph_id"])
	assert.Equal(t, "Graph created with 2 nodes", body["message"])

	resp, body = do(t, srv, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      "scoring",
		"initial_state": map[string]any{"code": "x = 1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	final := body["final_state"].(map[string]any)
	assert.EqualValues(t, 100, final["quality_score"])
}

func TestServer_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"malformed body", http.MethodPost, "/graph/create", "{not json", http.StatusBadRequest},
		{"unknown step", http.MethodPost, "/graph/create", map[string]any{
			"nodes": []map[string]any{{"name": "a", "func": "does_not_exist"}},
		}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/graph/create", map[string]any{
			"nodes":  []map[string]any{{"name": "a", "func": "check_complexity"}},
			"colour": "blue",
		}, http.StatusBadRequest},
		{"edge to missing node", http.MethodPost, "/graph/create", map[string]any{
			"nodes": []map[string]any{{"name": "a", "func": "check_complexity"}},
			"edges": []map[string]any{{"from": "a", "to": "b"}},
		}, http.StatusBadRequest},
		{"missing graph id", http.MethodPost, "/graph/run", map[string]any{}, http.StatusBadRequest},
		{"unknown graph", http.MethodPost, "/graph/run", map[string]any{"graph_id": "nope"}, http.StatusNotFound},
		{"unknown run", http.MethodGet, "/graph/state/nope", nil, http.StatusNotFound},
		{"unknown graph mermaid", http.MethodGet, "/graph/nope/mermaid", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestServer_NodeFailure(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/graph/create", map[string]any{
		"id": "fragile",
		"nodes": []map[string]any{
			{"name": "complexity", "func": "check_complexity"},
			{"name": "boom", "func": "explode"},
		},
		"edges": []map[string]any{{"from": "complexity", "to": "boom"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      "fragile",
		"initial_state": map[string]any{"code": "x = 1"},
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["detail"], "kaboom")

	runID, ok := body["run_id"].(string)
	require.True(t, ok)

	resp, body = do(t, srv, http.MethodGet, "/graph/state/"+runID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", body["status"])
	log := body["execution_log"].([]any)
	require.Len(t, log, 2)
	assert.Equal(t, "failed", log[1].(map[string]any)["status"])
}

func TestServer_UnknownLoopTargetIsServerError(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/graph/create", map[string]any{
		"id": "lost",
		"nodes": []map[string]any{
			{"name": "wander", "func": "loop_to_ghost"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/graph/run", map[string]any{"graph_id": "lost"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["detail"], testutils.GhostNode)

	runID, ok := body["run_id"].(string)
	require.True(t, ok)
	resp, body = do(t, srv, http.MethodGet, "/graph/state/"+runID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", body["status"])
}

func TestServer_Mermaid(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/graph/create/example", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/graph/code_review_workflow/mermaid", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["body"], "graph TD")
	assert.NotContains(t, body["body"], "classDef visited")

	_, run := do(t, srv, http.MethodPost, "/graph/run", map[string]any{
		"graph_id":      "code_review_workflow",
		"initial_state": map[string]any{"code": "x = 1"},
	})
	path := fmt.Sprintf("/graph/code_review_workflow/mermaid?run_id=%s", run["run_id"])
	resp, body = do(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["body"], "classDef visited")
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	collector, err := metrics.New(nil)
	require.NoError(t, err)
	srv = newTestServer(t, httpadapter.WithMetricsHandler(collector.Handler()))
	resp, _ = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	nodeErr := &domain.NodeError{Node: "a", Err: definition.ErrInvalidDefinition}
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(nodeErr))
	assert.Equal(t, http.StatusNotFound, httpadapter.StatusFor(fmt.Errorf("x: %w", domain.ErrRunNotFound)))
	assert.Equal(t, http.StatusBadRequest, httpadapter.StatusFor(domain.ErrNoEntryNode))
	assert.Equal(t, http.StatusBadRequest, httpadapter.StatusFor(domain.ErrMissingNode))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(fmt.Errorf("after %q: %w", "a", domain.ErrUnknownLoopTarget)))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(errors.New("other")))
}
