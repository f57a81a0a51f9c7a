package tools

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
)

func TestListWorkItemsResolvesQueryResults(t *testing.T) {
	var gotWiql string
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/_apis/wit/wiql"):
			var req ado.WiqlRequest
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &req))
			gotWiql = req.Query
			w.Write([]byte(`{"workItems":[{"id":101},{"id":102}]}`))
		case strings.HasSuffix(r.URL.Path, "/_apis/wit/workitemsbatch"):
			w.Write([]byte(`{"count":2,"value":[
				{"id":101,"rev":3,"fields":{"System.Title":"fix login","System.State":"Active"}},
				{"id":102,"rev":1,"fields":{"System.Title":"add logout"}}
			]}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	})

	res := call(t, h, "list_work_items", `{"project":"Fabrikam"}`)
	require.False(t, res.isErr)
	assert.Contains(t, gotWiql, "[System.TeamProject] = 'Fabrikam'")

	var items []normalize.WorkItem
	require.NoError(t, json.Unmarshal([]byte(res.body), &items))
	require.Len(t, items, 2)
	assert.Equal(t, 101, items[0].ID)
	require.NotNil(t, items[0].State)
	assert.Equal(t, "Active", *items[0].State)
	assert.Nil(t, items[1].State, "absent state must stay null")
}

func TestQueryWorkItemsRejectsUnknownFilterWithoutNetwork(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "query_work_items", `{"project":"Fabrikam","filters":{"iteration_path":"Sprint 1"}}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}

func TestCreateWorkItemBuildsPatchDocument(t *testing.T) {
	var patch []ado.PatchOp
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json-patch+json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &patch))
		w.Write([]byte(`{"id":55,"rev":1,"fields":{"System.Title":"crash on login","System.WorkItemType":"Bug"}}`))
	})

	res := call(t, h, "create_work_item", `{
		"project": "Fabrikam",
		"work_item_type": "Bug",
		"title": "crash on login",
		"assigned_to": "sam@example.com",
		"fields": {"System.Tags": "auth"}
	}`)
	require.False(t, res.isErr)

	byPath := map[string]ado.PatchOp{}
	for _, op := range patch {
		assert.Equal(t, "add", op.Op)
		byPath[op.Path] = op
	}
	assert.Equal(t, "crash on login", byPath["/fields/System.Title"].Value)
	assert.Equal(t, "sam@example.com", byPath["/fields/System.AssignedTo"].Value)
	assert.Equal(t, "auth", byPath["/fields/System.Tags"].Value)
	assert.NotContains(t, byPath, "/fields/System.Description", "unset fields get no patch op")

	var wi normalize.WorkItem
	require.NoError(t, json.Unmarshal([]byte(res.body), &wi))
	assert.Equal(t, 55, wi.ID)
}

func TestCreateWorkItemRequiresTitle(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "create_work_item", `{"project":"Fabrikam","work_item_type":"Bug","title":"  "}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}

func TestUpdateWorkItemPatchesOnlySuppliedFields(t *testing.T) {
	var method string
	var patch []ado.PatchOp
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &patch))
		w.Write([]byte(`{"id":55,"rev":2,"fields":{"System.State":"Resolved"}}`))
	})

	res := call(t, h, "update_work_item", `{"work_item_id":55,"state":"Resolved"}`)
	require.False(t, res.isErr)
	assert.Equal(t, http.MethodPatch, method)
	require.Len(t, patch, 1)
	assert.Equal(t, "replace", patch[0].Op)
	assert.Equal(t, "/fields/System.State", patch[0].Path)
	assert.Equal(t, "Resolved", patch[0].Value)
}

func TestUpdateWorkItemRequiresAtLeastOneField(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "update_work_item", `{"work_item_id":55}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}

func TestListWorkItemsEmptyResult(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"workItems":[]}`))
	})

	res := call(t, h, "list_work_items", `{"project":"Fabrikam"}`)
	require.False(t, res.isErr)
	assert.JSONEq(t, `[]`, res.body)
}
