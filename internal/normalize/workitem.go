// Package normalize maps raw upstream payloads, whose shapes vary across
// API versions and resource types, into the stable schemas returned by the
// tool façade.
package normalize

import (
	"github.com/mitchellh/mapstructure"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
)

// Well-known work item field reference names.
const (
	FieldTitle        = "System.Title"
	FieldState        = "System.State"
	FieldWorkItemType = "System.WorkItemType"
	FieldAssignedTo   = "System.AssignedTo"
	FieldDescription  = "System.Description"
	FieldTeamProject  = "System.TeamProject"
	FieldChangedDate  = "System.ChangedDate"
	FieldPriority     = "Microsoft.VSTS.Common.Priority"
)

// FieldMap is the open work item field set. Which fields exist depends on
// the project's work item template, so unknown upstream fields are kept and
// passed through instead of being discarded.
type FieldMap map[string]any

// String returns the named field as a string; ok is false when the field is
// absent or not a string. Absence is distinguishable from an empty value.
func (f FieldMap) String(name string) (value string, ok bool) {
	v, present := f[name]
	if !present {
		return "", false
	}
	s, isString := v.(string)
	return s, isString
}

// identityRef is the upstream shape of person-valued fields.
type identityRef struct {
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"displayName"`
	UniqueName  string `mapstructure:"uniqueName"`
}

// Identity decodes a person-valued field. Older API versions return a plain
// string, newer ones an identity object; both are handled.
func (f FieldMap) Identity(name string) (display string, ok bool) {
	v, present := f[name]
	if !present || v == nil {
		return "", false
	}
	if s, isString := v.(string); isString {
		return s, s != ""
	}
	var ref identityRef
	if err := mapstructure.Decode(v, &ref); err != nil {
		return "", false
	}
	if ref.DisplayName != "" {
		return ref.DisplayName, true
	}
	return ref.UniqueName, ref.UniqueName != ""
}

// WorkItem is the stable tool-facing work item shape. Known fields are
// surfaced as explicit members; nil means the upstream field was absent,
// which is never conflated with an empty value. The full field map rides
// along so template-specific fields stay accessible.
type WorkItem struct {
	ID           int      `json:"id"`
	Rev          int      `json:"rev"`
	Title        *string  `json:"title"`
	State        *string  `json:"state"`
	WorkItemType *string  `json:"work_item_type"`
	AssignedTo   *string  `json:"assigned_to"`
	URL          string   `json:"url"`
	Fields       FieldMap `json:"fields,omitempty"`
}

// NewWorkItem normalizes a raw upstream work item.
func NewWorkItem(raw ado.WorkItem) WorkItem {
	fields := FieldMap(raw.Fields)
	wi := WorkItem{
		ID:     raw.ID,
		Rev:    raw.Rev,
		URL:    raw.URL,
		Fields: fields,
	}
	if v, ok := fields.String(FieldTitle); ok {
		wi.Title = &v
	}
	if v, ok := fields.String(FieldState); ok {
		wi.State = &v
	}
	if v, ok := fields.String(FieldWorkItemType); ok {
		wi.WorkItemType = &v
	}
	if v, ok := fields.Identity(FieldAssignedTo); ok {
		wi.AssignedTo = &v
	}
	return wi
}

// WorkItems normalizes a batch, preserving order.
func WorkItems(raw []ado.WorkItem) []WorkItem {
	out := make([]WorkItem, 0, len(raw))
	for _, wi := range raw {
		out = append(out, NewWorkItem(wi))
	}
	return out
}
