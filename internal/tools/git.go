package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

const defaultBranch = "main"

func (h *Handler) registerGitTools() {
	h.register(mcp.Tool{
		Name:        "list_repositories",
		Description: "List the git repositories of a project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project name"}
			},
			"required": ["project"]
		}`),
	}, h.listRepositories)

	h.register(mcp.Tool{
		Name:        "get_repository",
		Description: "Get details of a specific repository by ID or name.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project name"},
				"repository_id": {"type": "string", "description": "Repository ID or name"}
			},
			"required": ["project", "repository_id"]
		}`),
	}, h.getRepository)

	h.register(mcp.Tool{
		Name:        "list_branches",
		Description: "List the branches of a repository.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"limit": {"type": "integer", "description": "Max branches to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "repository_id"]
		}`),
	}, h.listBranches)

	h.register(mcp.Tool{
		Name:        "get_commits",
		Description: "Get the commit history of a branch, most recent first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"branch": {"type": "string", "description": "Branch name (default: main)"},
				"limit": {"type": "integer", "description": "Max commits to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "repository_id"]
		}`),
	}, h.getCommits)

	h.register(mcp.Tool{
		Name:        "get_file_content",
		Description: "Get the content of a file from a repository at a given branch.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"path": {"type": "string", "description": "File path inside the repository"},
				"branch": {"type": "string", "description": "Branch name (default: main)"}
			},
			"required": ["project", "repository_id", "path"]
		}`),
	}, h.getFileContent)

	h.register(mcp.Tool{
		Name:        "list_repository_items",
		Description: "List files and folders under a repository path (one level). Folders sort before files, each lexicographically by path.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"path": {"type": "string", "description": "Folder path (default: repository root)"},
				"branch": {"type": "string", "description": "Branch name (default: main)"},
				"limit": {"type": "integer", "description": "Max items to return (default: 100, ceiling: 500)"}
			},
			"required": ["project", "repository_id"]
		}`),
	}, h.listRepositoryItems)
}

type repoInput struct {
	Project      string `json:"project"`
	RepositoryID string `json:"repository_id"`
	Branch       string `json:"branch,omitempty"`
	Path         string `json:"path,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

func (in *repoInput) validate(needRepository bool) error {
	if strings.TrimSpace(in.Project) == "" {
		return errs.Validation("project is required")
	}
	if needRepository && strings.TrimSpace(in.RepositoryID) == "" {
		return errs.Validation("repository_id is required")
	}
	if in.Branch == "" {
		in.Branch = defaultBranch
	}
	return nil
}

func (h *Handler) listRepositories(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(false); err != nil {
		return errorResult(err), nil
	}
	repos, err := h.client.ListRepositories(ctx, in.Project)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Repositories(repos)), nil
}

func (h *Handler) getRepository(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	repo, err := h.client.GetRepository(ctx, in.Project, in.RepositoryID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewRepository(repo)), nil
}

func (h *Handler) listBranches(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	refs, err := h.client.ListBranches(ctx, in.Project, in.RepositoryID, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Branches(refs)), nil
}

func (h *Handler) getCommits(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	commits, err := h.client.ListCommits(ctx, in.Project, in.RepositoryID, in.Branch, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Commits(commits)), nil
}

func (h *Handler) getFileContent(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(in.Path) == "" {
		return errorResult(errs.Validation("path is required")), nil
	}
	item, err := h.client.GetItem(ctx, in.Project, in.RepositoryID, in.Path, in.Branch)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewFileItem(item)), nil
}

func (h *Handler) listRepositoryItems(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in repoInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	scopePath := in.Path
	if scopePath == "" {
		scopePath = "/"
	}
	limit := clampLimit(in.Limit, defaultPageSize, maxItemsLimit)
	items, err := h.client.ListItems(ctx, in.Project, in.RepositoryID, scopePath, in.Branch)
	if err != nil {
		return errorResult(err), nil
	}
	normalized := normalize.Items(items, scopePath)
	if len(normalized) > limit {
		normalized = normalized[:limit]
	}
	return jsonResult(normalized), nil
}
