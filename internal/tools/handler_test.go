package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/config"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/govern"
)

// newTestHandler wires a handler against a stub upstream, returning a counter
// of requests that actually reached the network.
func newTestHandler(t *testing.T, upstream http.HandlerFunc) (*Handler, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Config{BaseURL: srv.URL, Token: "test-pat", Collection: "DefaultCollection", APIVersion: "6.0"}
	gov := govern.New(govern.Config{MaxInFlight: 8, RatePerSecond: 100000, Burst: 100000, AcquireWait: time.Second})
	client := ado.New(cfg, gov, ado.WithHTTPClient(srv.Client()))
	return NewHandler(client), &hits
}

type callResult struct {
	isErr bool
	body  string
}

// decodeError parses the typed error embedded in a failed tool result.
func decodeError(t *testing.T, result callResult) errs.Error {
	t.Helper()
	require.True(t, result.isErr)
	var e errs.Error
	require.NoError(t, json.Unmarshal([]byte(result.body), &e))
	return e
}

func call(t *testing.T, h *Handler, tool string, args string) callResult {
	t.Helper()
	result, err := h.Handle(context.Background(), tool, json.RawMessage(args))
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return callResult{isErr: result.IsError, body: result.Content[0].Text}
}

func TestHandlerRegistersAllTools(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	want := []string{
		"list_team_projects", "get_team_project", "list_teams",
		"list_work_items", "get_work_item", "create_work_item", "update_work_item", "query_work_items",
		"list_repositories", "get_repository", "list_branches", "get_commits", "get_file_content", "list_repository_items",
		"list_pull_requests", "get_pull_request", "create_pull_request", "get_pull_request_comments", "update_pull_request",
		"list_test_plans", "list_test_suites", "list_test_points",
	}
	names := make([]string, 0, len(h.Tools()))
	for _, tool := range h.Tools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %s needs a description", tool.Name)
		assert.NotEmpty(t, tool.InputSchema, "tool %s needs a schema", tool.Name)
	}
	assert.ElementsMatch(t, want, names)
}

func TestHandleUnknownTool(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "no_such_tool", `{}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, atomic.LoadInt32(hits))
}

func TestSchemaValidationRunsBeforeNetwork(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name string
		tool string
		args string
	}{
		{name: "missing required property", tool: "get_team_project", args: `{}`},
		{name: "wrong property type", tool: "get_work_item", args: `{"work_item_id":"42"}`},
		{name: "enum violation", tool: "list_pull_requests", args: `{"project":"p","repository_id":"r","status":"merged"}`},
		{name: "malformed json", tool: "list_team_projects", args: `{"limit":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, h, tt.tool, tt.args)
			e := decodeError(t, res)
			assert.Equal(t, errs.KindValidation, e.Kind)
		})
	}
	assert.EqualValues(t, 0, atomic.LoadInt32(hits), "validation failures must not reach the upstream")
}

func TestUpstreamErrorsAreEmbeddedNotRaised(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"project not found"}`))
	})

	result, err := h.Handle(context.Background(), "get_team_project", json.RawMessage(`{"project_id_or_name":"Ghost"}`))
	require.NoError(t, err, "tool failures surface in the result, not as handler errors")
	require.True(t, result.IsError)

	var e errs.Error
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &e))
	assert.Equal(t, errs.KindNotFound, e.Kind)
	assert.Equal(t, 404, e.Status)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0, defaultLimit, maxLimit))
	assert.Equal(t, defaultLimit, clampLimit(-5, defaultLimit, maxLimit))
	assert.Equal(t, 75, clampLimit(75, defaultLimit, maxLimit))
	assert.Equal(t, maxLimit, clampLimit(10000, defaultLimit, maxLimit))
}
