package store

import (
	"context"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// ListFilter narrows a template listing. Zero values match everything.
type ListFilter struct {
	Search   string
	IsActive *bool
}

// TemplateStore persists form templates.
type TemplateStore interface {
	List(ctx context.Context, filter ListFilter) ([]model.FormTemplate, error)
	Get(ctx context.Context, id int64) (model.FormTemplate, error)
	Create(ctx context.Context, payload model.TemplatePayload) (model.FormTemplate, error)
	Update(ctx context.Context, id int64, payload model.TemplatePayload) (model.FormTemplate, error)
	Delete(ctx context.Context, id int64) error
	Duplicate(ctx context.Context, id int64) (model.FormTemplate, error)
}

// EmployeeStore persists employee records.
type EmployeeStore interface {
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id int64) (model.Employee, error)
	Create(ctx context.Context, submission model.EmployeeSubmission) (model.Employee, error)
	Update(ctx context.Context, id int64, submission model.EmployeeSubmission) (model.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// Session supplies the bearer credential for authenticated calls. Refreshing
// the credential is the session owner's concern.
type Session interface {
	Credential() (string, bool)
}

// StaticSession is a Session backed by a fixed token. An empty token reports
// no credential.
type StaticSession string

// Credential implements Session.
func (s StaticSession) Credential() (string, bool) {
	token := strings.TrimSpace(string(s))
	return token, token != ""
}

// MatchTemplate reports whether template satisfies filter.
func MatchTemplate(template model.FormTemplate, filter ListFilter) bool {
	if filter.IsActive != nil && template.IsActive != *filter.IsActive {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(template.Name), search)
}

// DuplicateName returns the name given to a duplicated template.
func DuplicateName(name string) string {
	return name + " (Copy)"
}

// DuplicatePayload builds the payload that recreates template under its
// duplicate name with the same fields.
func DuplicatePayload(template model.FormTemplate) model.TemplatePayload {
	copied := template.Clone()
	copied.Name = DuplicateName(template.Name)
	copied.Fields = model.SortFields(copied.Fields)
	for idx := range copied.Fields {
		copied.Fields[idx].FieldOrder = idx
	}
	return copied.Payload()
}
