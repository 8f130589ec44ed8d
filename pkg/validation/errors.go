package validation

import (
	"sort"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// Issue is a field-scoped validation failure. An empty FieldID marks a
// form-level issue such as a missing template selection.
type Issue struct {
	FieldID model.FieldID `json:"fieldId,omitempty"`
	Message string        `json:"message"`
}

func (i Issue) Error() string {
	return i.Message
}

// Errors aggregates the issues found for a form. A nil or empty Errors value
// means the form is valid.
type Errors []Issue

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: no issues"
	}
	messages := make([]string, len(e))
	for idx, issue := range e {
		messages[idx] = issue.Message
	}
	return "validation: " + strings.Join(messages, "; ")
}

// Has reports whether any issue targets the field.
func (e Errors) Has(id model.FieldID) bool {
	_, ok := e.For(id)
	return ok
}

// For returns the first issue for a field.
func (e Errors) For(id model.FieldID) (Issue, bool) {
	for _, issue := range e {
		if issue.FieldID == id {
			return issue, true
		}
	}
	return Issue{}, false
}

// FieldIDs returns the distinct field ids with issues, sorted.
func (e Errors) FieldIDs() []model.FieldID {
	seen := make(map[model.FieldID]struct{}, len(e))
	ids := make([]model.FieldID, 0, len(e))
	for _, issue := range e {
		if issue.FieldID == "" {
			continue
		}
		if _, ok := seen[issue.FieldID]; ok {
			continue
		}
		seen[issue.FieldID] = struct{}{}
		ids = append(ids, issue.FieldID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Map groups messages by field id. Form-level issues are keyed by "".
func (e Errors) Map() map[model.FieldID][]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[model.FieldID][]string, len(e))
	for _, issue := range e {
		out[issue.FieldID] = append(out[issue.FieldID], issue.Message)
	}
	return out
}
