package normalize

import "github.com/golovatskygroup/mcp-ado/internal/ado"

// Project is the stable team project shape.
type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	URL            string  `json:"url"`
	State          *string `json:"state"`
	Revision       int64   `json:"revision"`
	Visibility     *string `json:"visibility"`
	LastUpdateTime *string `json:"last_update_time"`
}

func NewProject(raw ado.Project) Project {
	return Project{
		ID:             raw.ID,
		Name:           raw.Name,
		Description:    optional(raw.Description),
		URL:            raw.URL,
		State:          optional(raw.State),
		Revision:       raw.Revision,
		Visibility:     optional(raw.Visibility),
		LastUpdateTime: optional(raw.LastUpdateTime),
	}
}

func Projects(raw []ado.Project) []Project {
	out := make([]Project, 0, len(raw))
	for _, p := range raw {
		out = append(out, NewProject(p))
	}
	return out
}

// Team is the stable team shape.
type Team struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
	IdentityURL *string `json:"identity_url"`
}

func NewTeam(raw ado.Team) Team {
	return Team{
		ID:          raw.ID,
		Name:        raw.Name,
		URL:         raw.URL,
		Description: optional(raw.Description),
		IdentityURL: optional(raw.IdentityURL),
	}
}

func Teams(raw []ado.Team) []Team {
	out := make([]Team, 0, len(raw))
	for _, t := range raw {
		out = append(out, NewTeam(t))
	}
	return out
}

// optional maps an empty upstream string to an explicit null instead of a
// zero value that could be mistaken for real data.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
