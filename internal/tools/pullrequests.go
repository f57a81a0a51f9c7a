package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/errs"
	"github.com/golovatskygroup/mcp-ado/internal/normalize"
	"github.com/golovatskygroup/mcp-ado/pkg/mcp"
)

// prStatuses are the accepted pull request status filters.
var prStatuses = map[string]bool{
	"active":    true,
	"completed": true,
	"abandoned": true,
	"all":       true,
}

// prUpdateStatuses are the statuses a pull request can be moved to.
var prUpdateStatuses = map[string]bool{
	"active":    true,
	"completed": true,
	"abandoned": true,
}

func (h *Handler) registerPullRequestTools() {
	h.register(mcp.Tool{
		Name:        "list_pull_requests",
		Description: "List pull requests in a repository, filtered by status.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"status": {"type": "string", "enum": ["active", "completed", "abandoned", "all"], "description": "Status filter (default: active)"},
				"limit": {"type": "integer", "description": "Max pull requests to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "repository_id"]
		}`),
	}, h.listPullRequests)

	h.register(mcp.Tool{
		Name:        "get_pull_request",
		Description: "Get details of a pull request, including reviewers, merge state and linked work items.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"pull_request_id": {"type": "integer"}
			},
			"required": ["project", "repository_id", "pull_request_id"]
		}`),
	}, h.getPullRequest)

	h.register(mcp.Tool{
		Name:        "create_pull_request",
		Description: "Create a new pull request between two branches.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"title": {"type": "string"},
				"description": {"type": "string"},
				"source_branch": {"type": "string", "description": "Source branch name or full ref"},
				"target_branch": {"type": "string", "description": "Target branch name or full ref"},
				"draft": {"type": "boolean", "description": "Create as draft"},
				"reviewers": {"type": "array", "items": {"type": "string"}, "description": "Reviewer IDs or unique names"}
			},
			"required": ["project", "repository_id", "title", "source_branch", "target_branch"]
		}`),
	}, h.createPullRequest)

	h.register(mcp.Tool{
		Name:        "get_pull_request_comments",
		Description: "Get the comment threads of a pull request.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"pull_request_id": {"type": "integer"},
				"limit": {"type": "integer", "description": "Max threads to return (default: 50, ceiling: 200)"}
			},
			"required": ["project", "repository_id", "pull_request_id"]
		}`),
	}, h.getPullRequestComments)

	h.register(mcp.Tool{
		Name:        "update_pull_request",
		Description: "Update a pull request's title, description or status. Only supplied fields change.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string"},
				"repository_id": {"type": "string"},
				"pull_request_id": {"type": "integer"},
				"title": {"type": "string"},
				"description": {"type": "string"},
				"status": {"type": "string", "enum": ["active", "completed", "abandoned"]}
			},
			"required": ["project", "repository_id", "pull_request_id"]
		}`),
	}, h.updatePullRequest)
}

type pullRequestInput struct {
	Project       string `json:"project"`
	RepositoryID  string `json:"repository_id"`
	PullRequestID int    `json:"pull_request_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

func (in *pullRequestInput) validate(needID bool) error {
	if strings.TrimSpace(in.Project) == "" {
		return errs.Validation("project is required")
	}
	if strings.TrimSpace(in.RepositoryID) == "" {
		return errs.Validation("repository_id is required")
	}
	if needID && in.PullRequestID <= 0 {
		return errs.Validation("pull_request_id must be a positive integer")
	}
	return nil
}

func (h *Handler) listPullRequests(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in pullRequestInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(false); err != nil {
		return errorResult(err), nil
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = "active"
	}
	if !prStatuses[status] {
		return errorResult(errs.Validation("status must be one of active, completed, abandoned, all")), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	prs, err := h.client.ListPullRequests(ctx, in.Project, in.RepositoryID, status, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.PullRequests(prs)), nil
}

func (h *Handler) getPullRequest(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in pullRequestInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	pr, err := h.client.GetPullRequest(ctx, in.Project, in.RepositoryID, in.PullRequestID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewPullRequestDetail(pr)), nil
}

type createPullRequestInput struct {
	Project      string   `json:"project"`
	RepositoryID string   `json:"repository_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	SourceBranch string   `json:"source_branch"`
	TargetBranch string   `json:"target_branch"`
	Draft        bool     `json:"draft,omitempty"`
	Reviewers    []string `json:"reviewers,omitempty"`
}

func (h *Handler) createPullRequest(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in createPullRequestInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	switch {
	case strings.TrimSpace(in.Project) == "":
		return errorResult(errs.Validation("project is required")), nil
	case strings.TrimSpace(in.RepositoryID) == "":
		return errorResult(errs.Validation("repository_id is required")), nil
	case strings.TrimSpace(in.Title) == "":
		return errorResult(errs.Validation("title is required")), nil
	case strings.TrimSpace(in.SourceBranch) == "":
		return errorResult(errs.Validation("source_branch is required")), nil
	case strings.TrimSpace(in.TargetBranch) == "":
		return errorResult(errs.Validation("target_branch is required")), nil
	}

	create := ado.PullRequestCreate{
		SourceRefName: branchRef(in.SourceBranch),
		TargetRefName: branchRef(in.TargetBranch),
		Title:         in.Title,
		Description:   in.Description,
		IsDraft:       in.Draft,
	}
	for _, reviewer := range in.Reviewers {
		if reviewer == "" {
			continue
		}
		create.Reviewers = append(create.Reviewers, ado.IdentityRef{ID: reviewer, UniqueName: reviewer})
	}

	pr, err := h.client.CreatePullRequest(ctx, in.Project, in.RepositoryID, create)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewPullRequestDetail(pr)), nil
}

// branchRef qualifies a bare branch name as a full ref.
func branchRef(branch string) string {
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}

func (h *Handler) getPullRequestComments(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in pullRequestInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	if err := in.validate(true); err != nil {
		return errorResult(err), nil
	}
	limit := clampLimit(in.Limit, defaultLimit, maxLimit)
	threads, err := h.client.ListThreads(ctx, in.Project, in.RepositoryID, in.PullRequestID, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.Threads(threads)), nil
}

type updatePullRequestInput struct {
	Project       string `json:"project"`
	RepositoryID  string `json:"repository_id"`
	PullRequestID int    `json:"pull_request_id"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status,omitempty"`
}

func (h *Handler) updatePullRequest(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in updatePullRequestInput
	if err := unmarshalInput(args, &in); err != nil {
		return errorResult(err), nil
	}
	base := pullRequestInput{Project: in.Project, RepositoryID: in.RepositoryID, PullRequestID: in.PullRequestID}
	if err := base.validate(true); err != nil {
		return errorResult(err), nil
	}
	if in.Title == "" && in.Description == "" && in.Status == "" {
		return errorResult(errs.Validation("at least one of title, description or status is required")), nil
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != "" && !prUpdateStatuses[status] {
		return errorResult(errs.Validation("status must be one of active, completed, abandoned")), nil
	}

	pr, err := h.client.UpdatePullRequest(ctx, in.Project, in.RepositoryID, in.PullRequestID, ado.PullRequestUpdate{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(normalize.NewPullRequestDetail(pr)), nil
}
