package ado

import (
	"context"
	"net/url"
	"strconv"
)

func repoPath(project, repositoryID string) string {
	return url.PathEscape(project) + "/_apis/git/repositories/" + url.PathEscape(repositoryID)
}

// ListRepositories returns the git repositories of a project.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]Repository, error) {
	var env envelope[Repository]
	err := c.getJSON(ctx, url.PathEscape(project)+"/_apis/git/repositories", nil, &env)
	return env.Value, err
}

// GetRepository resolves a repository by id or name within a project.
func (c *Client) GetRepository(ctx context.Context, project, repositoryID string) (Repository, error) {
	var repo Repository
	err := c.getJSON(ctx, repoPath(project, repositoryID), nil, &repo)
	return repo, err
}

// ListBranches returns up to limit branch refs (refs/heads/*).
func (c *Client) ListBranches(ctx context.Context, project, repositoryID string, limit int) ([]GitRef, error) {
	params := url.Values{}
	params.Set("filter", "heads/")
	return getPaged[GitRef](ctx, c, repoPath(project, repositoryID)+"/refs", params, limit)
}

// ListCommits returns the commit history of a branch, most recent first.
func (c *Client) ListCommits(ctx context.Context, project, repositoryID, branch string, limit int) ([]GitCommit, error) {
	params := url.Values{}
	params.Set("searchCriteria.itemVersion.version", branch)
	params.Set("searchCriteria.itemVersion.versionType", "branch")
	params.Set("searchCriteria.$top", strconv.Itoa(limit))
	var env envelope[GitCommit]
	err := c.getJSON(ctx, repoPath(project, repositoryID)+"/commits", params, &env)
	if err != nil {
		return nil, err
	}
	if len(env.Value) > limit {
		env.Value = env.Value[:limit]
	}
	return env.Value, nil
}

// GetItem fetches a single file item with content, resolved against a branch.
func (c *Client) GetItem(ctx context.Context, project, repositoryID, path, branch string) (GitItem, error) {
	params := url.Values{}
	params.Set("path", path)
	params.Set("versionDescriptor.version", branch)
	params.Set("versionDescriptor.versionType", "branch")
	params.Set("includeContent", "true")
	params.Set("$format", "json")
	var item GitItem
	err := c.getJSON(ctx, repoPath(project, repositoryID)+"/items", params, &item)
	return item, err
}

// ListItems lists the direct children of a path on a branch (one level).
func (c *Client) ListItems(ctx context.Context, project, repositoryID, scopePath, branch string) ([]GitItem, error) {
	params := url.Values{}
	params.Set("scopePath", scopePath)
	params.Set("versionDescriptor.version", branch)
	params.Set("versionDescriptor.versionType", "branch")
	params.Set("recursionLevel", "OneLevel")
	var env envelope[GitItem]
	err := c.getJSON(ctx, repoPath(project, repositoryID)+"/items", params, &env)
	return env.Value, err
}
