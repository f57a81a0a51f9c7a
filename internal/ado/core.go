package ado

import (
	"context"
	"net/url"
)

// ListProjects returns up to limit team projects in the collection,
// following continuation tokens across pages.
func (c *Client) ListProjects(ctx context.Context, limit int) ([]Project, error) {
	return getPaged[Project](ctx, c, "_apis/projects", nil, limit)
}

// GetProject resolves a project by id or name. Name matching is
// case-insensitive on the upstream side.
func (c *Client) GetProject(ctx context.Context, idOrName string) (Project, error) {
	var p Project
	err := c.getJSON(ctx, "_apis/projects/"+url.PathEscape(idOrName), nil, &p)
	return p, err
}

// ListTeams returns the teams of a project.
func (c *Client) ListTeams(ctx context.Context, projectIDOrName string, limit int) ([]Team, error) {
	return getPaged[Team](ctx, c, "_apis/projects/"+url.PathEscape(projectIDOrName)+"/teams", nil, limit)
}
