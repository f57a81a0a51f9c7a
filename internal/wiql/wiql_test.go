package wiql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
)

func TestBuildProjectOnly(t *testing.T) {
	query, err := Build(Filters{Project: "Fabrikam", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT TOP 50 [System.Id], [System.Title], [System.State], [System.AssignedTo], [System.WorkItemType], [System.ChangedDate] "+
			"FROM WorkItems WHERE [System.TeamProject] = 'Fabrikam' ORDER BY [System.ChangedDate] DESC",
		query)
}

func TestBuildAllFilters(t *testing.T) {
	query, err := Build(Filters{
		Project:       "Fabrikam",
		WorkItemType:  "Bug",
		State:         "Active",
		AssignedTo:    "sam@example.com",
		TitleContains: "login",
		ChangedAfter:  "2026-01-01",
		ChangedBefore: "2026-06-30",
		Limit:         10,
	})
	require.NoError(t, err)
	assert.Contains(t, query, "[System.WorkItemType] = 'Bug'")
	assert.Contains(t, query, "[System.State] = 'Active'")
	assert.Contains(t, query, "[System.AssignedTo] = 'sam@example.com'")
	assert.Contains(t, query, "[System.Title] CONTAINS 'login'")
	assert.Contains(t, query, "[System.ChangedDate] >= '2026-01-01'")
	assert.Contains(t, query, "[System.ChangedDate] <= '2026-06-30'")
	assert.Contains(t, query, "SELECT TOP 10 ")
}

func TestBuildEscapesSingleQuotes(t *testing.T) {
	query, err := Build(Filters{Project: "Fabrikam", TitleContains: "user's session"})
	require.NoError(t, err)
	assert.Contains(t, query, "CONTAINS 'user''s session'")
	assert.NotContains(t, query, "'user's")
}

func TestBuildRejectsUnknownExtraField(t *testing.T) {
	_, err := Build(Filters{Project: "Fabrikam", Extra: map[string]string{"iteration_path": "Sprint 1"}})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Contains(t, err.Error(), "iteration_path")
	assert.Contains(t, err.Error(), "assigned_to, state, title, work_item_type")
}

func TestBuildRejectsEmptyExtraValue(t *testing.T) {
	_, err := Build(Filters{Project: "Fabrikam", Extra: map[string]string{"state": ""}})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestBuildAcceptsAllowListedExtraFields(t *testing.T) {
	query, err := Build(Filters{Project: "Fabrikam", Extra: map[string]string{
		"state":          "Closed",
		"work_item_type": "Task",
	}})
	require.NoError(t, err)
	assert.Contains(t, query, "[System.State] = 'Closed'")
	assert.Contains(t, query, "[System.WorkItemType] = 'Task'")
}

func TestBuildRejectsBadDates(t *testing.T) {
	_, err := Build(Filters{Project: "Fabrikam", ChangedAfter: "01/02/2026"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = Build(Filters{Project: "Fabrikam", ChangedBefore: "yesterday"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestBuildRequiresProject(t *testing.T) {
	_, err := Build(Filters{})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestDefaultListQuery(t *testing.T) {
	query := DefaultListQuery("My 'Project'")
	assert.Contains(t, query, "[System.TeamProject] = 'My ''Project'''")
	assert.Contains(t, query, "FROM WorkItems")
}
