package normalize

import (
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
)

// ProjectRef ties an entity to the project it was resolved under.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Repository is the stable repository shape.
type Repository struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	SSHURL        *string    `json:"ssh_url"`
	WebURL        *string    `json:"web_url"`
	DefaultBranch *string    `json:"default_branch"`
	Size          int64      `json:"size"`
	IsFork        bool       `json:"is_fork"`
	Project       ProjectRef `json:"project"`
}

func NewRepository(raw ado.Repository) Repository {
	return Repository{
		ID:            raw.ID,
		Name:          raw.Name,
		URL:           raw.URL,
		SSHURL:        optional(raw.SSHURL),
		WebURL:        optional(raw.WebURL),
		DefaultBranch: optional(raw.DefaultBranch),
		Size:          raw.Size,
		IsFork:        raw.IsFork,
		Project:       ProjectRef{ID: raw.Project.ID, Name: raw.Project.Name},
	}
}

func Repositories(raw []ado.Repository) []Repository {
	out := make([]Repository, 0, len(raw))
	for _, r := range raw {
		out = append(out, NewRepository(r))
	}
	return out
}

// Branch is the stable branch shape; the refs/heads/ prefix is stripped.
type Branch struct {
	Name     string `json:"name"`
	ObjectID string `json:"object_id"`
	URL      string `json:"url"`
	IsLocked bool   `json:"is_locked"`
}

func NewBranch(raw ado.GitRef) Branch {
	return Branch{
		Name:     strings.TrimPrefix(raw.Name, "refs/heads/"),
		ObjectID: raw.ObjectID,
		URL:      raw.URL,
		IsLocked: raw.IsLocked,
	}
}

func Branches(raw []ado.GitRef) []Branch {
	out := make([]Branch, 0, len(raw))
	for _, r := range raw {
		out = append(out, NewBranch(r))
	}
	return out
}

// Signature is an author or committer stamp.
type Signature struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Date  *string `json:"date"`
}

func newSignature(raw *ado.GitUserDate) *Signature {
	if raw == nil {
		return nil
	}
	return &Signature{
		Name:  optional(raw.Name),
		Email: optional(raw.Email),
		Date:  optional(raw.Date),
	}
}

// Commit is the stable commit shape.
type Commit struct {
	CommitID  string     `json:"commit_id"`
	Author    *Signature `json:"author"`
	Committer *Signature `json:"committer"`
	Comment   *string    `json:"comment"`
	Parents   []string   `json:"parents,omitempty"`
	URL       string     `json:"url"`
	RemoteURL *string    `json:"remote_url"`
}

func NewCommit(raw ado.GitCommit) Commit {
	return Commit{
		CommitID:  raw.CommitID,
		Author:    newSignature(raw.Author),
		Committer: newSignature(raw.Committer),
		Comment:   optional(raw.Comment),
		Parents:   raw.Parents,
		URL:       raw.URL,
		RemoteURL: optional(raw.RemoteURL),
	}
}

func Commits(raw []ado.GitCommit) []Commit {
	out := make([]Commit, 0, len(raw))
	for _, c := range raw {
		out = append(out, NewCommit(c))
	}
	return out
}

// ContentMetadata describes a file's content; the upstream shape varies by
// version so it is decoded loosely.
type ContentMetadata struct {
	ContentType *string `json:"content_type"`
	FileName    *string `json:"file_name"`
	IsBinary    bool    `json:"is_binary"`
	IsImage     bool    `json:"is_image"`
}

func newContentMetadata(raw map[string]any) *ContentMetadata {
	if len(raw) == 0 {
		return nil
	}
	var decoded struct {
		ContentType string `mapstructure:"contentType"`
		FileName    string `mapstructure:"fileName"`
		IsBinary    bool   `mapstructure:"isBinary"`
		IsImage     bool   `mapstructure:"isImage"`
	}
	if err := mapstructure.Decode(raw, &decoded); err != nil {
		return nil
	}
	return &ContentMetadata{
		ContentType: optional(decoded.ContentType),
		FileName:    optional(decoded.FileName),
		IsBinary:    decoded.IsBinary,
		IsImage:     decoded.IsImage,
	}
}

// Item is the stable file/tree entry shape. Content is only present for
// single-file fetches.
type Item struct {
	ObjectID        string           `json:"object_id"`
	Path            string           `json:"path"`
	IsFolder        bool             `json:"is_folder"`
	Size            int64            `json:"size"`
	URL             string           `json:"url"`
	GitObjectType   *string          `json:"git_object_type,omitempty"`
	Content         *string          `json:"content,omitempty"`
	ContentMetadata *ContentMetadata `json:"content_metadata,omitempty"`
}

// NewFileItem normalizes a single-file fetch including its content.
func NewFileItem(raw ado.GitItem) Item {
	item := newItem(raw)
	if raw.Content != "" {
		item.Content = &raw.Content
	}
	item.ContentMetadata = newContentMetadata(raw.ContentMetadata)
	return item
}

func newItem(raw ado.GitItem) Item {
	return Item{
		ObjectID:      raw.ObjectID,
		Path:          raw.Path,
		IsFolder:      raw.IsFolder || raw.GitObjectType == "tree",
		Size:          raw.Size,
		URL:           raw.URL,
		GitObjectType: optional(raw.GitObjectType),
	}
}

// Items normalizes a directory listing: the scope path itself is dropped,
// and entries are ordered folders first, then files, each lexicographically
// by path. The order is stable and documented as part of the tool contract.
func Items(raw []ado.GitItem, scopePath string) []Item {
	out := make([]Item, 0, len(raw))
	for _, it := range raw {
		if samePath(it.Path, scopePath) {
			continue
		}
		out = append(out, newItem(it))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFolder != out[j].IsFolder {
			return out[i].IsFolder
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func samePath(a, b string) bool {
	return strings.Trim(a, "/") == strings.Trim(b, "/")
}
