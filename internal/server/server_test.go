package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/config"
	"github.com/golovatskygroup/mcp-ado/internal/govern"
	"github.com/golovatskygroup/mcp-ado/internal/tools"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

// runSession feeds newline-delimited JSON-RPC requests through the server
// and returns the responses keyed by request id.
func runSession(t *testing.T, upstream http.HandlerFunc, requests ...string) map[string]mcp.Response {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.Config{BaseURL: srv.URL, Token: "test-pat", Collection: "DefaultCollection", APIVersion: "6.0"}
	gov := govern.New(govern.Config{MaxInFlight: 8, RatePerSecond: 100000, Burst: 100000, AcquireWait: time.Second})
	handler := tools.NewHandler(ado.New(cfg, gov, ado.WithHTTPClient(srv.Client())))

	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer
	s := New(handler,
		WithTransport(mcp.NewTransport(in, &out)),
		WithLogf(func(string, ...any) {}))
	require.NoError(t, s.Run(context.Background()))

	responses := map[string]mcp.Response{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp mcp.Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses[string(resp.ID)] = resp
	}
	return responses
}

func TestInitializeHandshake(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	resp, ok := responses["1"]
	require.True(t, ok)
	require.Nil(t, resp.Error)

	var result mcp.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "mcp-ado", result.ServerInfo.Name)
	require.NotNil(t, result.Capabilities.Tools)
	assert.Contains(t, result.Instructions, "list_work_items")
}

func TestToolsListExposesEveryTool(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {},
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	var result mcp.ListToolsResult
	require.NoError(t, json.Unmarshal(responses["1"].Result, &result))
	assert.Len(t, result.Tools, 22)
}

func TestToolsCallRoundTrip(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":1,"value":[{"id":"p1","name":"Fabrikam"}]}`)
	},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_team_projects","arguments":{}}}`)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(responses["1"].Result, &result))
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	assert.Contains(t, result.Content[0].Text, "Fabrikam")
}

func TestUnknownToolGetsSuggestion(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {},
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_team_project","arguments":{}}}`)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(responses["1"].Result, &result))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
	assert.Contains(t, result.Content[0].Text, "list_team_projects")
}

func TestUnknownMethod(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {},
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)

	resp := responses["1"]
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.MethodNotFound, resp.Error.Code)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	responses := runSession(t, func(w http.ResponseWriter, r *http.Request) {},
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	assert.Len(t, responses, 1)
	_, ok := responses["1"]
	assert.True(t, ok)
}

func TestClosestTool(t *testing.T) {
	known := []string{"list_work_items", "get_work_item", "list_repositories"}
	assert.Equal(t, "get_work_item", closestTool("get_work_itm", known))
	assert.Equal(t, "", closestTool("zzzzzz", known))
}
