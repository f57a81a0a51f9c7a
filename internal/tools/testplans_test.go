package tools

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
)

func TestListTestPlansActiveOnly(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includePlanDetails"))
		w.Write([]byte(`{"count":3,"value":[
			{"id":1,"name":"Release 1.0","state":"Active"},
			{"id":2,"name":"Archived","state":"Inactive"},
			{"id":3,"name":"Release 2.0","state":"active"}
		]}`))
	})

	res := call(t, h, "list_test_plans", `{"project":"Fabrikam","active_only":true}`)
	require.False(t, res.isErr)

	var plans []normalize.TestPlan
	require.NoError(t, json.Unmarshal([]byte(res.body), &plans))
	require.Len(t, plans, 2, "state matching is case-insensitive")
	assert.Equal(t, 1, plans[0].ID)
	assert.Equal(t, 3, plans[1].ID)
}

func TestListTestSuites(t *testing.T) {
	var gotPath string
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"count":1,"value":[{"id":10,"name":"Regression"}]}`))
	})

	res := call(t, h, "list_test_suites", `{"project":"Fabrikam","plan_id":7}`)
	require.False(t, res.isErr)
	assert.True(t, strings.HasSuffix(gotPath, "/_apis/test/plans/7/suites"), "got %s", gotPath)

	var suites []normalize.TestSuite
	require.NoError(t, json.Unmarshal([]byte(res.body), &suites))
	require.Len(t, suites, 1)
	assert.Equal(t, "Regression", suites[0].Name)
}

func TestListTestPointsFiltersByOutcome(t *testing.T) {
	h, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":3,"value":[
			{"id":1,"outcome":"Passed","testCase":{"id":"201","name":"login works"}},
			{"id":2,"outcome":"Failed","testCase":{"id":"202","name":"logout works"}},
			{"id":3,"outcome":"Unspecified","testCase":{"id":"203"}}
		]}`))
	})

	res := call(t, h, "list_test_points", `{"project":"Fabrikam","plan_id":7,"suite_id":10,"outcome":"Failed"}`)
	require.False(t, res.isErr)

	var points []normalize.TestPoint
	require.NoError(t, json.Unmarshal([]byte(res.body), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].ID)
	assert.Equal(t, "202", points[0].TestCase.ID)
}

func TestListTestPointsRejectsUnknownOutcome(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "list_test_points", `{"project":"Fabrikam","plan_id":7,"suite_id":10,"outcome":"Flaky"}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}

func TestListTestSuitesRequiresPositivePlanID(t *testing.T) {
	h, hits := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	res := call(t, h, "list_test_suites", `{"project":"Fabrikam","plan_id":0}`)
	e := decodeError(t, res)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.EqualValues(t, 0, *hits)
}
