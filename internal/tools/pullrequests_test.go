package tools

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
)

func TestListPullRequestsDefaultsToActive(t *testing.T) {
	var gotStatus string
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("searchCriteria.status")
		w.Write([]byte(`{"count":1,"value":[{"pullRequestId":12,"title":"Add login","status":"active","sourceRefName":"refs/heads/feature/login","targetRefName":"refs/heads/main"}]}`))
	})

	res := call(t, h, "list_pull_requests", `{"project":"Fabrikam","repository_id":"api"}`)
	require.False(t, res.isErr)
	assert.Equal(t, "active", gotStatus)

	var prs []normalize.PullRequest
	require.NoError(t, json.Unmarshal([]byte(res.body), &prs))
	require.Len(t, prs, 1)
	assert.Equal(t, 12, prs[0].PullRequestID)
}

func TestCreatePullRequestQualifiesBranchRefs(t *testing.T) {
	var create ado.PullRequestCreate
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &create))
		w.Write([]byte(`{"pullRequestId":13,"title":"Add logout","status":"active"}`))
	})

	res := call(t, h, "create_pull_request", `{
		"project": "Fabrikam",
		"repository_id": "api",
		"title": "Add logout",
		"source_branch": "feature/logout",
		"target_branch": "refs/heads/main",
		"reviewers": ["sam@example.com"]
	}`)
	require.False(t, res.isErr)
	assert.Equal(t, "refs/heads/feature/logout", create.SourceRefName)
	assert.Equal(t, "refs/heads/main", create.TargetRefName, "full refs pass through unchanged")
	require.Len(t, create.Reviewers, 1)
	assert.Equal(t, "sam@example.com", create.Reviewers[0].UniqueName)
}

func TestUpdatePullRequestRequiresAChange(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "update_pull_request", `{"project":"Fabrikam","repository_id":"api","pull_request_id":12}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}

func TestUpdatePullRequestSendsOnlySuppliedFields(t *testing.T) {
	var method string
	var body map[string]any
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Write([]byte(`{"pullRequestId":12,"title":"Add login","status":"abandoned"}`))
	})

	res := call(t, h, "update_pull_request", `{"project":"Fabrikam","repository_id":"api","pull_request_id":12,"status":"abandoned"}`)
	require.False(t, res.isErr)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, map[string]any{"status": "abandoned"}, body, "omitted fields stay untouched upstream")
}

func TestGetPullRequestIncludesDetail(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includeWorkItemRefs"))
		w.Write([]byte(`{
			"pullRequestId": 12,
			"title": "Add login",
			"status": "completed",
			"mergeStatus": "succeeded",
			"reviewers": [{"displayName":"Sam Rivera","vote":10,"isRequired":true}],
			"workItemRefs": [{"id":"101"}]
		}`))
	})

	res := call(t, h, "get_pull_request", `{"project":"Fabrikam","repository_id":"api","pull_request_id":12}`)
	require.False(t, res.isErr)

	var pr normalize.PullRequestDetail
	require.NoError(t, json.Unmarshal([]byte(res.body), &pr))
	assert.Equal(t, 12, pr.PullRequestID)
	require.NotNil(t, pr.MergeStatus)
	assert.Equal(t, "succeeded", *pr.MergeStatus)
	require.Len(t, pr.Reviewers, 1)
	assert.Equal(t, 10, pr.Reviewers[0].Vote)
	require.Len(t, pr.WorkItemRefs, 1)
}
