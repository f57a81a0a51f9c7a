package normalize

import "github.com/golovatskygroup/mcp-ado/internal/ado"

// Identity is a normalized person reference.
type Identity struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
	UniqueName  *string `json:"unique_name"`
}

func newIdentity(raw *ado.IdentityRef) *Identity {
	if raw == nil {
		return nil
	}
	return &Identity{
		ID:          raw.ID,
		DisplayName: optional(raw.DisplayName),
		UniqueName:  optional(raw.UniqueName),
	}
}

// PullRequestReviewer carries the reviewer's vote state.
type PullRequestReviewer struct {
	Identity
	Vote       int  `json:"vote"`
	IsRequired bool `json:"is_required"`
}

// RepositoryRef ties a pull request to its repository.
type RepositoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PullRequest is the stable pull request shape.
type PullRequest struct {
	PullRequestID int            `json:"pull_request_id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Status        string         `json:"status"`
	IsDraft       bool           `json:"is_draft"`
	CreationDate  *string        `json:"creation_date"`
	SourceRefName string         `json:"source_ref_name"`
	TargetRefName string         `json:"target_ref_name"`
	CreatedBy     *Identity      `json:"created_by"`
	Repository    *RepositoryRef `json:"repository"`
	URL           string         `json:"url"`
}

// PullRequestDetail adds the fields only returned for single-PR fetches.
type PullRequestDetail struct {
	PullRequest
	ClosedDate            *string               `json:"closed_date"`
	MergeStatus           *string               `json:"merge_status"`
	MergeID               *string               `json:"merge_id"`
	LastMergeSourceCommit *string               `json:"last_merge_source_commit"`
	LastMergeTargetCommit *string               `json:"last_merge_target_commit"`
	Reviewers             []PullRequestReviewer `json:"reviewers"`
	WorkItemRefs          []WorkItemRef         `json:"work_item_refs"`
}

// WorkItemRef links a pull request to a work item.
type WorkItemRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewPullRequest(raw ado.PullRequest) PullRequest {
	pr := PullRequest{
		PullRequestID: raw.PullRequestID,
		Title:         raw.Title,
		Description:   optional(raw.Description),
		Status:        raw.Status,
		IsDraft:       raw.IsDraft,
		CreationDate:  optional(raw.CreationDate),
		SourceRefName: raw.SourceRefName,
		TargetRefName: raw.TargetRefName,
		CreatedBy:     newIdentity(raw.CreatedBy),
		URL:           raw.URL,
	}
	if raw.Repository != nil {
		pr.Repository = &RepositoryRef{ID: raw.Repository.ID, Name: raw.Repository.Name}
	}
	return pr
}

func PullRequests(raw []ado.PullRequest) []PullRequest {
	out := make([]PullRequest, 0, len(raw))
	for _, pr := range raw {
		out = append(out, NewPullRequest(pr))
	}
	return out
}

func NewPullRequestDetail(raw ado.PullRequest) PullRequestDetail {
	detail := PullRequestDetail{
		PullRequest: NewPullRequest(raw),
		ClosedDate:  optional(raw.ClosedDate),
		MergeStatus: optional(raw.MergeStatus),
		MergeID:     optional(raw.MergeID),
		Reviewers:   make([]PullRequestReviewer, 0, len(raw.Reviewers)),
	}
	if raw.LastMergeSourceCommit != nil {
		detail.LastMergeSourceCommit = optional(raw.LastMergeSourceCommit.CommitID)
	}
	if raw.LastMergeTargetCommit != nil {
		detail.LastMergeTargetCommit = optional(raw.LastMergeTargetCommit.CommitID)
	}
	for _, r := range raw.Reviewers {
		rev := r
		detail.Reviewers = append(detail.Reviewers, PullRequestReviewer{
			Identity:   *newIdentity(&rev.IdentityRef),
			Vote:       r.Vote,
			IsRequired: r.IsRequired,
		})
	}
	detail.WorkItemRefs = make([]WorkItemRef, 0, len(raw.WorkItemRefs))
	for _, ref := range raw.WorkItemRefs {
		detail.WorkItemRefs = append(detail.WorkItemRefs, WorkItemRef{ID: ref.ID, URL: ref.URL})
	}
	return detail
}

// ThreadPosition locates a thread comment within a file diff.
type ThreadPosition struct {
	Line int `json:"line"`
}

// ThreadContext locates a comment thread in the changed files.
type ThreadContext struct {
	FilePath       *string         `json:"file_path"`
	LeftFileStart  *ThreadPosition `json:"left_file_start"`
	RightFileStart *ThreadPosition `json:"right_file_start"`
}

// ThreadComment is one comment of a review thread.
type ThreadComment struct {
	ID              int       `json:"id"`
	Content         *string   `json:"content"`
	CommentType     *string   `json:"comment_type"`
	Author          *Identity `json:"author"`
	PublishedDate   *string   `json:"published_date"`
	LastUpdatedDate *string   `json:"last_updated_date"`
}

// Thread is a pull request comment thread.
type Thread struct {
	ID              int             `json:"id"`
	Status          *string         `json:"status"`
	ThreadContext   *ThreadContext  `json:"thread_context"`
	Comments        []ThreadComment `json:"comments"`
	IsDeleted       bool            `json:"is_deleted"`
	PublishedDate   *string         `json:"published_date"`
	LastUpdatedDate *string         `json:"last_updated_date"`
}

func NewThread(raw ado.CommentThread) Thread {
	t := Thread{
		ID:              raw.ID,
		Status:          optional(raw.Status),
		IsDeleted:       raw.IsDeleted,
		PublishedDate:   optional(raw.PublishedDate),
		LastUpdatedDate: optional(raw.LastUpdatedDate),
		Comments:        make([]ThreadComment, 0, len(raw.Comments)),
	}
	if raw.ThreadContext != nil {
		tc := &ThreadContext{FilePath: optional(raw.ThreadContext.FilePath)}
		if raw.ThreadContext.LeftFileStart != nil {
			tc.LeftFileStart = &ThreadPosition{Line: raw.ThreadContext.LeftFileStart.Line}
		}
		if raw.ThreadContext.RightFileStart != nil {
			tc.RightFileStart = &ThreadPosition{Line: raw.ThreadContext.RightFileStart.Line}
		}
		t.ThreadContext = tc
	}
	for _, c := range raw.Comments {
		comment := c
		t.Comments = append(t.Comments, ThreadComment{
			ID:              c.ID,
			Content:         optional(c.Content),
			CommentType:     optional(c.CommentType),
			Author:          newIdentity(comment.Author),
			PublishedDate:   optional(c.PublishedDate),
			LastUpdatedDate: optional(c.LastUpdatedDate),
		})
	}
	return t
}

func Threads(raw []ado.CommentThread) []Thread {
	out := make([]Thread, 0, len(raw))
	for _, t := range raw {
		out = append(out, NewThread(t))
	}
	return out
}
