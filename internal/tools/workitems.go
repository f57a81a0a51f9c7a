package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
	"github.com/golovatskygroup/mcp-ado/internal/wiql"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

func (h *Handler) registerWorkItemTools() {
	h.register(mcp.Tool{
		Name:        "list_work_items",
		Description: "List work items from a project. Accepts an optional raw WIQL query; without one, recent work items of the project are listed.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project name"},
				"query": {"type": "string", "description": "Optional WIQL query"},
				"limit": {"type": "integer", "description": "Max work items to return (default: 50, ceiling: 200)"}
			},
			"required": ["project"]
		}`),
	}, h.listWorkItems)

	h.register(mcp.Tool{
		Name:        "get_work_item",
		Description: "Get a work item by ID, including its full field set.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"work_item_id": {"type": "integer", "description": "Work item ID"}
			},
			"required": ["work_item_id"]
		}`),
	}, h.getWorkItem)

	h.register(mcp.Tool{
		Name:        "create_work_item",
		Description: "Create a new work item (e.g. Bug, Task, User Story).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project name"},
				"work_item_type": {"type": "string", "description": "Work item type, e.g. 'Bug'"},
				"title": {"type": "string", "description": "Title"},
				"description": {"type": "string", "description": "Optional description"},
				"assigned_to": {"type": "string", "description": "Optional assignee"},
				"state": {"type": "string", "description": "Optional initial state"},
				"priority": {"type": "string", "description": "Optional priority"},
				"fields": {"type": "object", "description": "Additional fields keyed by reference name, e.g. 'System.Tags'"}
			},
			"required": ["project", "work_item_type", "title"]
		}`),
	}, h.createWorkItem)

	h.register(mcp.Tool{
		Name:        "update_work_item",
		Description: "Update fields of an existing work item. Only supplied fields change.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"work_item_id": {"type": "integer", "description": "Work item ID"},
				"title": {"type": "string"},
				"description": {"type": "string"},
				"assigned_to": {"type": "string"},
				"state": {"type": "string"},
				"priority": {"type": "string"},
				"fields": {"type": "object", "description": "Additional field updates keyed by reference name"}
			},
			"required": ["work_item_id"]
		}`),
	}, h.updateWorkItem)

	h.register(mcp.Tool{
		Name:        "query_work_items",
		Description: "Query work items with structured filters, translated into WIQL with allow-listed fields only.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project name"},
				"work_item_type": {"type": "string", "description": "Filter by type"},
				"state": {"type": "string", "description": "Filter by state"},
				"assigned_to": {"type": "string", "description": "Filter by assignee"},
				"title_contains": {"type": "string", "description": "Filter by title substring"},
				"changed_after": {"type": "string", "description": "Only items changed on/after this date (YYYY-MM-DD)"},
				"changed_before": {"type": "string", "description": "Only items changed on/before this date (YYYY-MM-DD)"},
				"filters": {"type": "object", "additionalProperties": {"type": "string"}, "description": "Extra equality filters on allow-listed fields"},
				"limit": {"type": "integer", "description": "Max work items to return (default: 50, ceiling: 200)"}
			},
			"required": ["project"]
		}`),
	}, h.queryWorkItems)
}

type listWorkItemsInput struct {
	Project string `json:"project"`
	Query   string `json:"query,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func (h *Handler) listWorkItems(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in listWorkItemsInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.Project) == "" {
		return errorResult(errs.Validation("project is required")), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	query := strings.TrimSpace(in.Query)
	if query == "" {
		query = wiql.DefaultListQuery(in.Project)
	}
	return h.runQuery(ctx, in.Project, query, limit)
}

// runQuery executes a WIQL statement and resolves the referenced work items.
func (h *Handler) runQuery(ctx context.Context, project, query string, limit int) (*mcp.CallToolResult, error) {
	result, err := h.client.QueryWIQL(ctx, project, query, limit)
	if err != nil {
		return errorResult(err), nil
	}
	refs := result.WorkItems
	if len(refs) > limit {
		refs = refs[:limit]
	}
	if len(refs) == 0 {
		return jsonResult([]normalize.WorkItem{}), nil
	}
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	items, err := h.client.GetWorkItems(ctx, ids)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.WorkItems(items)), nil
}

type workItemIDInput struct {
	WorkItemID int `json:"work_item_id"`
}

func (h *Handler) getWorkItem(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in workItemIDInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if in.WorkItemID <= 0 {
		return errorResult(errs.Validation("work_item_id must be a positive integer")), nil
	}
	item, err := h.client.GetWorkItem(ctx, in.WorkItemID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewWorkItem(item)), nil
}

type createWorkItemInput struct {
	Project      string            `json:"project"`
	WorkItemType string            `json:"work_item_type"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	AssignedTo   string            `json:"assigned_to,omitempty"`
	State        string            `json:"state,omitempty"`
	Priority     string            `json:"priority,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

func (h *Handler) createWorkItem(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createWorkItemInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	switch {
	case strings.TrimSpace(in.Project) == "":
		return errorResult(errs.Validation("project is required")), nil
	case strings.TrimSpace(in.WorkItemType) == "":
		return errorResult(errs.Validation("work_item_type is required")), nil
	case strings.TrimSpace(in.Title) == "":
		return errorResult(errs.Validation("title is required")), nil
	}

	patch := []ado.PatchOp{{Op: "add", Path: "/fields/" + normalize.FieldTitle, Value: in.Title}}
	patch = appendFieldOps(patch, "add", in.Description, in.AssignedTo, in.State, in.Priority, in.Fields)

	item, err := h.client.CreateWorkItem(ctx, in.Project, in.WorkItemType, patch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewWorkItem(item)), nil
}

type updateWorkItemInput struct {
	WorkItemID  int               `json:"work_item_id"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	State       string            `json:"state,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

func (h *Handler) updateWorkItem(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updateWorkItemInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if in.WorkItemID <= 0 {
		return errorResult(errs.Validation("work_item_id must be a positive integer")), nil
	}

	var patch []ado.PatchOp
	if in.Title != "" {
		patch = append(patch, ado.PatchOp{Op: "replace", Path: "/fields/" + normalize.FieldTitle, Value: in.Title})
	}
	patch = appendFieldOps(patch, "replace", in.Description, in.AssignedTo, in.State, in.Priority, in.Fields)
	if len(patch) == 0 {
		return errorResult(errs.Validation("at least one field to update is required")), nil
	}

	item, err := h.client.UpdateWorkItem(ctx, in.WorkItemID, patch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewWorkItem(item)), nil
}

// appendFieldOps adds patch operations for the optional named fields and the
// open fields map. Empty values are skipped, not written as blanks.
func appendFieldOps(patch []ado.PatchOp, op, description, assignedTo, state, priority string, fields map[string]string) []ado.PatchOp {
	add := func(refName, value string) {
		if value != "" {
			patch = append(patch, ado.PatchOp{Op: op, Path: "/fields/" + refName, Value: value})
		}
	}
	add(normalize.FieldDescription, description)
	add(normalize.FieldAssignedTo, assignedTo)
	add(normalize.FieldState, state)
	add(normalize.FieldPriority, priority)
	for refName, value := range fields {
		add(refName, value)
	}
	return patch
}

type queryWorkItemsInput struct {
	Project       string            `json:"project"`
	WorkItemType  string            `json:"work_item_type,omitempty"`
	State         string            `json:"state,omitempty"`
	AssignedTo    string            `json:"assigned_to,omitempty"`
	TitleContains string            `json:"title_contains,omitempty"`
	ChangedAfter  string            `json:"changed_after,omitempty"`
	ChangedBefore string            `json:"changed_before,omitempty"`
	Filters       map[string]string `json:"filters,omitempty"`
	Limit         int               `json:"limit,omitempty"`
}

func (h *Handler) queryWorkItems(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in queryWorkItemsInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	query, err := wiql.Build(wiql.Filters{
		Project:       in.Project,
		WorkItemType:  in.WorkItemType,
		State:         in.State,
		AssignedTo:    in.AssignedTo,
		TitleContains: in.TitleContains,
		ChangedAfter:  in.ChangedAfter,
		ChangedBefore: in.ChangedBefore,
		Extra:         in.Filters,
		Limit:         limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return h.runQuery(ctx, in.Project, query, limit)
}
