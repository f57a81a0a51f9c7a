package ado

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ListPullRequests returns pull requests of a repository filtered by status
// (active, completed, abandoned or all).
func (c *Client) ListPullRequests(ctx context.Context, project, repositoryID, status string, limit int) ([]PullRequest, error) {
	params := url.Values{}
	params.Set("searchCriteria.status", status)
	params.Set("$top", strconv.Itoa(limit))
	var env envelope[PullRequest]
	err := c.getJSON(ctx, repoPath(project, repositoryID)+"/pullrequests", params, &env)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > limit {
		env.Value = env.Value[:limit]
	}
	return env.Value, nil
}

// GetPullRequest fetches one pull request with work item references included.
func (c *Client) GetPullRequest(ctx context.Context, project, repositoryID string, pullRequestID int) (PullRequest, error) {
	params := url.Values{}
	params.Set("includeWorkItemRefs", "true")
	var pr PullRequest
	err := c.getJSON(ctx, repoPath(project, repositoryID)+"/pullrequests/"+strconv.Itoa(pullRequestID), params, &pr)
	return pr, err
}

// CreatePullRequest opens a new pull request.
func (c *Client) CreatePullRequest(ctx context.Context, project, repositoryID string, create PullRequestCreate) (PullRequest, error) {
	body, err := json.Marshal(create)
	if err != nil {
		return PullRequest{}, err
	}
	respBody, _, err := c.do(ctx, http.MethodPost, repoPath(project, repositoryID)+"/pullrequests", nil, body, "application/json")
	if err != nil {
		return PullRequest{}, err
	}
	var pr PullRequest
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return PullRequest{}, err
	}
	return pr, nil
}

// UpdatePullRequest patches title, description and/or status.
func (c *Client) UpdatePullRequest(ctx context.Context, project, repositoryID string, pullRequestID int, update PullRequestUpdate) (PullRequest, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return PullRequest{}, err
	}
	path := repoPath(project, repositoryID) + "/pullrequests/" + strconv.Itoa(pullRequestID)
	respBody, _, err := c.do(ctx, http.MethodPatch, path, nil, body, "application/json")
	if err != nil {
		return PullRequest{}, err
	}
	var pr PullRequest
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return PullRequest{}, err
	}
	return pr, nil
}

// ListThreads returns the comment threads of a pull request.
func (c *Client) ListThreads(ctx context.Context, project, repositoryID string, pullRequestID int, limit int) ([]CommentThread, error) {
	path := repoPath(project, repositoryID) + "/pullrequests/" + strconv.Itoa(pullRequestID) + "/threads"
	var env envelope[CommentThread]
	err := c.getJSON(ctx, path, nil, &env)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > limit {
		env.Value = env.Value[:limit]
	}
	return env.Value, nil
}
