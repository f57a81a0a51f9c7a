package ado

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// workItemBatchSize keeps each resolution request small; very large id lists
// are split to avoid oversized requests against older servers.
const workItemBatchSize = 20

// QueryWIQL executes a WIQL statement in a project and returns the matching
// work item references in query order.
func (c *Client) QueryWIQL(ctx context.Context, project, query string, top int) (WiqlResponse, error) {
	params := url.Values{}
	if top > 0 {
		params.Set("$top", strconv.Itoa(top))
	}
	body, err := json.Marshal(WiqlRequest{Query: query})
	if err != nil {
		return WiqlResponse{}, err
	}
	respBody, _, err := c.do(ctx, http.MethodPost, url.PathEscape(project)+"/_apis/wit/wiql", params, body, "application/json")
	if err != nil {
		return WiqlResponse{}, err
	}
	var resp WiqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return WiqlResponse{}, err
	}
	return resp, nil
}

// GetWorkItem fetches one work item with its full field set.
func (c *Client) GetWorkItem(ctx context.Context, id int) (WorkItem, error) {
	params := url.Values{}
	params.Set("$expand", "All")
	var wi WorkItem
	err := c.getJSON(ctx, "_apis/wit/workitems/"+strconv.Itoa(id), params, &wi)
	return wi, err
}

// GetWorkItems resolves a list of work item ids, batching the requests.
// The result preserves the input order.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]WorkItem, error) {
	items := make([]WorkItem, 0, len(ids))
	for start := 0; start < len(ids); start += workItemBatchSize {
		end := min(start+workItemBatchSize, len(ids))
		batch, err := c.getWorkItemsBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (c *Client) getWorkItemsBatch(ctx context.Context, ids []int) ([]WorkItem, error) {
	body, err := json.Marshal(WorkItemsBatchRequest{IDs: ids, Expand: "Fields"})
	if err != nil {
		return nil, err
	}
	respBody, _, err := c.do(ctx, http.MethodPost, "_apis/wit/workitemsbatch", nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	var env envelope[WorkItem]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, err
	}
	return env.Value, nil
}

// CreateWorkItem creates a work item of the given type from a JSON-Patch
// document of field adds.
func (c *Client) CreateWorkItem(ctx context.Context, project, workItemType string, patch []PatchOp) (WorkItem, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return WorkItem{}, err
	}
	path := url.PathEscape(project) + "/_apis/wit/workitems/$" + url.PathEscape(workItemType)
	respBody, _, err := c.do(ctx, http.MethodPost, path, nil, body, "application/json-patch+json")
	if err != nil {
		return WorkItem{}, err
	}
	var wi WorkItem
	if err := json.Unmarshal(respBody, &wi); err != nil {
		return WorkItem{}, err
	}
	return wi, nil
}

// UpdateWorkItem applies a JSON-Patch document to an existing work item.
// Only the supplied fields change (partial update semantics).
func (c *Client) UpdateWorkItem(ctx context.Context, id int, patch []PatchOp) (WorkItem, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return WorkItem{}, err
	}
	respBody, _, err := c.do(ctx, http.MethodPatch, "_apis/wit/workitems/"+strconv.Itoa(id), nil, body, "application/json-patch+json")
	if err != nil {
		return WorkItem{}, err
	}
	var wi WorkItem
	if err := json.Unmarshal(respBody, &wi); err != nil {
		return WorkItem{}, err
	}
	return wi, nil
}
