package ado

// Raw upstream payload shapes. Field names follow the REST API's camelCase;
// normalization into the stable tool-facing schema happens in
// internal/normalize, not here.

type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	State          string `json:"state"`
	Revision       int64  `json:"revision"`
	Visibility     string `json:"visibility"`
	LastUpdateTime string `json:"lastUpdateTime"`
}

type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	IdentityURL string `json:"identityUrl"`
}

// WorkItem keeps the full open field map; which fields exist depends on the
// project's work item template.
type WorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
	URL    string         `json:"url"`
}

type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type WiqlRequest struct {
	Query string `json:"query"`
}

type WiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	WorkItems       []WorkItemReference `json:"workItems"`
}

// PatchOp is one JSON-Patch operation for work item create/update.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

type WorkItemsBatchRequest struct {
	IDs    []int    `json:"ids"`
	Fields []string `json:"fields,omitempty"`
	Expand string   `json:"$expand,omitempty"`
}

type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Repository struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	SSHURL        string     `json:"sshUrl"`
	WebURL        string     `json:"webUrl"`
	DefaultBranch string     `json:"defaultBranch"`
	Size          int64      `json:"size"`
	IsFork        bool       `json:"isFork"`
	Project       ProjectRef `json:"project"`
}

type GitRef struct {
	Name     string `json:"name"`
	ObjectID string `json:"objectId"`
	URL      string `json:"url"`
	IsLocked bool   `json:"isLocked"`
}

type GitUserDate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type GitCommit struct {
	CommitID  string       `json:"commitId"`
	Author    *GitUserDate `json:"author"`
	Committer *GitUserDate `json:"committer"`
	Comment   string       `json:"comment"`
	URL       string       `json:"url"`
	RemoteURL string       `json:"remoteUrl"`
	Parents   []string     `json:"parents"`
}

type GitItem struct {
	ObjectID        string         `json:"objectId"`
	Path            string         `json:"path"`
	IsFolder        bool           `json:"isFolder"`
	Size            int64          `json:"size"`
	URL             string         `json:"url"`
	GitObjectType   string         `json:"gitObjectType"`
	CommitID        string         `json:"commitId"`
	Content         string         `json:"content"`
	ContentMetadata map[string]any `json:"contentMetadata"`
}

type IdentityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
	URL         string `json:"url"`
}

type Reviewer struct {
	IdentityRef
	Vote       int  `json:"vote"`
	IsRequired bool `json:"isRequired"`
}

type CommitRef struct {
	CommitID string `json:"commitId"`
}

type ResourceRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PullRequest struct {
	PullRequestID         int           `json:"pullRequestId"`
	Title                 string        `json:"title"`
	Description           string        `json:"description"`
	Status                string        `json:"status"`
	CreationDate          string        `json:"creationDate"`
	ClosedDate            string        `json:"closedDate"`
	SourceRefName         string        `json:"sourceRefName"`
	TargetRefName         string        `json:"targetRefName"`
	IsDraft               bool          `json:"isDraft"`
	CreatedBy             *IdentityRef  `json:"createdBy"`
	Repository            *Repository   `json:"repository"`
	Reviewers             []Reviewer    `json:"reviewers"`
	MergeStatus           string        `json:"mergeStatus"`
	MergeID               string        `json:"mergeId"`
	LastMergeSourceCommit *CommitRef    `json:"lastMergeSourceCommit"`
	LastMergeTargetCommit *CommitRef    `json:"lastMergeTargetCommit"`
	WorkItemRefs          []ResourceRef `json:"workItemRefs"`
	URL                   string        `json:"url"`
}

// PullRequestCreate is the POST body for a new pull request.
type PullRequestCreate struct {
	SourceRefName string        `json:"sourceRefName"`
	TargetRefName string        `json:"targetRefName"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	IsDraft       bool          `json:"isDraft,omitempty"`
	Reviewers     []IdentityRef `json:"reviewers,omitempty"`
}

// PullRequestUpdate carries only the fields being changed; omitted fields
// keep their upstream values (PATCH semantics).
type PullRequestUpdate struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

type CommentPosition struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

type ThreadContext struct {
	FilePath       string           `json:"filePath"`
	LeftFileStart  *CommentPosition `json:"leftFileStart"`
	RightFileStart *CommentPosition `json:"rightFileStart"`
}

type Comment struct {
	ID              int          `json:"id"`
	Content         string       `json:"content"`
	CommentType     string       `json:"commentType"`
	Author          *IdentityRef `json:"author"`
	PublishedDate   string       `json:"publishedDate"`
	LastUpdatedDate string       `json:"lastUpdatedDate"`
}

type CommentThread struct {
	ID              int            `json:"id"`
	Status          string         `json:"status"`
	ThreadContext   *ThreadContext `json:"threadContext"`
	Comments        []Comment      `json:"comments"`
	IsDeleted       bool           `json:"isDeleted"`
	PublishedDate   string         `json:"publishedDate"`
	LastUpdatedDate string         `json:"lastUpdatedDate"`
}

type TestPlan struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	UpdatedDate string `json:"updatedDate"`
}

type TestSuite struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ShallowReference is the generic {id, name} reference used by the test APIs.
type ShallowReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TestPoint struct {
	ID       int              `json:"id"`
	Outcome  string           `json:"outcome"`
	State    string           `json:"state"`
	TestCase ShallowReference `json:"testCase"`
}
