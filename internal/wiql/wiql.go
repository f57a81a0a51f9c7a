// Package wiql builds Work Item Query Language statements from structured
// filter arguments. Fields and operators come from a fixed allow-list and
// values are bound through escaping, never raw concatenation, so caller
// input cannot break out of the query.
package wiql

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
)

// Column names the translator may reference.
const (
	colID          = "System.Id"
	colTitle       = "System.Title"
	colState       = "System.State"
	colAssignedTo  = "System.AssignedTo"
	colType        = "System.WorkItemType"
	colProject     = "System.TeamProject"
	colChangedDate = "System.ChangedDate"
)

// allowedFilterFields is the allow-list for caller-supplied extra field
// filters. Anything else fails validation before a network call is made.
var allowedFilterFields = map[string]string{
	"state":          colState,
	"assigned_to":    colAssignedTo,
	"work_item_type": colType,
	"title":          colTitle,
}

const dateLayout = "2006-01-02"

// Filters are the structured arguments of a work item query. Zero values
// mean "no constraint"; Project is required.
type Filters struct {
	Project       string
	WorkItemType  string
	State         string
	AssignedTo    string
	TitleContains string
	ChangedAfter  string // YYYY-MM-DD
	ChangedBefore string // YYYY-MM-DD
	Limit         int

	// Extra holds additional equality filters keyed by allow-listed
	// filter names.
	Extra map[string]string
}

// Build translates the filters into a WIQL statement ordered by most
// recently changed first.
func Build(f Filters) (string, error) {
	if strings.TrimSpace(f.Project) == "" {
		return "", errs.Validation("project is required")
	}

	conditions := []string{condition(colProject, "=", f.Project)}
	if f.WorkItemType != "" {
		conditions = append(conditions, condition(colType, "=", f.WorkItemType))
	}
	if f.State != "" {
		conditions = append(conditions, condition(colState, "=", f.State))
	}
	if f.AssignedTo != "" {
		conditions = append(conditions, condition(colAssignedTo, "=", f.AssignedTo))
	}
	if f.TitleContains != "" {
		conditions = append(conditions, condition(colTitle, "CONTAINS", f.TitleContains))
	}
	if f.ChangedAfter != "" {
		if _, err := time.Parse(dateLayout, f.ChangedAfter); err != nil {
			return "", errs.Validation("changed_after must be a YYYY-MM-DD date, got %q", f.ChangedAfter)
		}
		conditions = append(conditions, condition(colChangedDate, ">=", f.ChangedAfter))
	}
	if f.ChangedBefore != "" {
		if _, err := time.Parse(dateLayout, f.ChangedBefore); err != nil {
			return "", errs.Validation("changed_before must be a YYYY-MM-DD date, got %q", f.ChangedBefore)
		}
		conditions = append(conditions, condition(colChangedDate, "<=", f.ChangedBefore))
	}
	extraNames := make([]string, 0, len(f.Extra))
	for name := range f.Extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		col, ok := allowedFilterFields[name]
		if !ok {
			return "", errs.Validation("filter field %q is not supported; allowed: %s", name, strings.Join(allowedFieldNames(), ", "))
		}
		value := f.Extra[name]
		if value == "" {
			return "", errs.Validation("filter field %q requires a non-empty value", name)
		}
		conditions = append(conditions, condition(col, "=", value))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if f.Limit > 0 {
		fmt.Fprintf(&sb, "TOP %d ", f.Limit)
	}
	fmt.Fprintf(&sb, "[%s], [%s], [%s], [%s], [%s], [%s] FROM WorkItems WHERE %s ORDER BY [%s] DESC",
		colID, colTitle, colState, colAssignedTo, colType, colChangedDate,
		strings.Join(conditions, " AND "), colChangedDate)
	return sb.String(), nil
}

// condition renders one comparison with the value bound via escaping.
func condition(column, operator, value string) string {
	return fmt.Sprintf("[%s] %s '%s'", column, operator, escape(value))
}

// escape doubles single quotes, the WIQL string-literal escape.
func escape(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func allowedFieldNames() []string {
	names := make([]string, 0, len(allowedFilterFields))
	for name := range allowedFilterFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultListQuery is the statement used when list_work_items is called
// without an explicit query.
func DefaultListQuery(project string) string {
	return fmt.Sprintf(
		"SELECT [%s], [%s], [%s], [%s], [%s] FROM WorkItems WHERE %s",
		colID, colTitle, colState, colAssignedTo, colType,
		condition(colProject, "=", project))
}
