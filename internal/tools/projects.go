package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

func (h *Handler) registerProjectTools() {
	h.register(mcp.Tool{
		Name:        "list_team_projects",
		Description: "List all team projects in the Azure DevOps Server/TFS collection.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "integer", "description": "Max projects to return (default: 50, ceiling: 200)"}
			}
		}`),
	}, h.listTeamProjects)

	h.register(mcp.Tool{
		Name:        "get_team_project",
		Description: "Get details of a specific team project by ID or name (name match is case-insensitive).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_id_or_name": {"type": "string", "description": "Project ID or name"}
			},
			"required": ["project_id_or_name"]
		}`),
	}, h.getTeamProject)

	h.register(mcp.Tool{
		Name:        "list_teams",
		Description: "List all teams of a specific team project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_id_or_name": {"type": "string", "description": "Project ID or name"},
				"limit": {"type": "integer", "description": "Max teams to return (default: 50, ceiling: 200)"}
			},
			"required": ["project_id_or_name"]
		}`),
	}, h.listTeams)
}

type listProjectsInput struct {
	Limit int `json:"limit,omitempty"`
}

func (h *Handler) listTeamProjects(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in listProjectsInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	projects, err := h.client.ListProjects(ctx, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Projects(projects)), nil
}

type projectInput struct {
	ProjectIDOrName string `json:"project_id_or_name"`
	Limit           int    `json:"limit,omitempty"`
}

func (h *Handler) getTeamProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in projectInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.ProjectIDOrName) == "" {
		return errorResult(errs.Validation("project_id_or_name is required")), nil
	}
	project, err := h.client.GetProject(ctx, in.ProjectIDOrName)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewProject(project)), nil
}

func (h *Handler) listTeams(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in projectInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.ProjectIDOrName) == "" {
		return errorResult(errs.Validation("project_id_or_name is required")), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	teams, err := h.client.ListTeams(ctx, in.ProjectIDOrName, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Teams(teams)), nil
}

// unmarshalInput decodes tool arguments, treating empty args as an empty
// object.
func unmarshalInput(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errs.Validation("invalid input: %v", err)
	}
	return nil
}
