// Package memory provides an in-process implementation of the template and
// employee stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

// Option customises a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps templates and employees in memory. Templates and Employees
// expose the two collaborator interfaces over the same data so employee
// writes can be checked against the stored templates.
type Store struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	now       func() time.Time
	templates map[int64]model.FormTemplate
	employees map[int64]model.Employee
	nextTmpl  int64
	nextField int64
	nextEmp   int64
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:    zap.NewNop(),
		now:       time.Now,
		templates: make(map[int64]model.FormTemplate),
		employees: make(map[int64]model.Employee),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Templates returns the TemplateStore view of s.
func (s *Store) Templates() store.TemplateStore { return templateStore{s} }

// Employees returns the EmployeeStore view of s.
func (s *Store) Employees() store.EmployeeStore { return employeeStore{s} }

type templateStore struct{ s *Store }

func (t templateStore) List(_ context.Context, filter store.ListFilter) ([]model.FormTemplate, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	out := make([]model.FormTemplate, 0, len(t.s.templates))
	for _, template := range t.s.templates {
		if store.MatchTemplate(template, filter) {
			out = append(out, template.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t templateStore) Get(_ context.Context, id int64) (model.FormTemplate, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	template, ok := t.s.templates[id]
	if !ok {
		return model.FormTemplate{}, notFound("template", id)
	}
	return template.Clone(), nil
}

func (t templateStore) Create(_ context.Context, payload model.TemplatePayload) (model.FormTemplate, error) {
	if err := payload.Validate(); err != nil {
		return model.FormTemplate{}, store.Newf(err, "%s", err.Error())
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.s.nextTmpl++
	template := payload.Template()
	template.ID = t.s.nextTmpl
	template.CreatedAt = t.s.now()
	template.UpdatedAt = template.CreatedAt
	t.s.assignFieldIDs(template.Fields, nil)
	t.s.templates[template.ID] = template
	t.s.logger.Debug("template created", zap.Int64("template_id", template.ID), zap.Int("fields", len(template.Fields)))
	return template.Clone(), nil
}

func (t templateStore) Update(_ context.Context, id int64, payload model.TemplatePayload) (model.FormTemplate, error) {
	if err := payload.Validate(); err != nil {
		return model.FormTemplate{}, store.Newf(err, "%s", err.Error())
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	existing, ok := t.s.templates[id]
	if !ok {
		return model.FormTemplate{}, notFound("template", id)
	}
	template := payload.Template()
	template.ID = id
	template.IsActive = existing.IsActive
	template.CreatedAt = existing.CreatedAt
	template.UpdatedAt = t.s.now()
	t.s.assignFieldIDs(template.Fields, existing.Fields)
	t.s.templates[id] = template
	t.s.logger.Debug("template updated", zap.Int64("template_id", id), zap.Int("fields", len(template.Fields)))
	return template.Clone(), nil
}

func (t templateStore) Delete(_ context.Context, id int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.templates[id]; !ok {
		return notFound("template", id)
	}
	for _, employee := range t.s.employees {
		if employee.FormTemplateID == id {
			return &store.CollaboratorError{Message: "Template is in use by employee records"}
		}
	}
	delete(t.s.templates, id)
	return nil
}

func (t templateStore) Duplicate(ctx context.Context, id int64) (model.FormTemplate, error) {
	source, err := t.Get(ctx, id)
	if err != nil {
		return model.FormTemplate{}, err
	}
	return t.Create(ctx, store.DuplicatePayload(source))
}

// assignFieldIDs gives every field a numeric id. Fields whose name matches a
// previous version keep that version's id so stored answers stay attached.
func (s *Store) assignFieldIDs(fields, previous []model.FieldDefinition) {
	byName := make(map[string]model.FieldID, len(previous))
	for _, field := range previous {
		byName[field.FieldName] = field.ID
	}
	used := make(map[model.FieldID]struct{}, len(fields))
	for idx := range fields {
		if id, ok := byName[fields[idx].FieldName]; ok {
			if _, taken := used[id]; !taken {
				fields[idx].ID = id
				used[id] = struct{}{}
				continue
			}
		}
		s.nextField++
		fields[idx].ID = model.FieldID(strconv.FormatInt(s.nextField, 10))
		used[fields[idx].ID] = struct{}{}
	}
}

type employeeStore struct{ s *Store }

func (e employeeStore) List(context.Context) ([]model.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	out := make([]model.Employee, 0, len(e.s.employees))
	for _, employee := range e.s.employees {
		out = append(out, cloneEmployee(employee))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (e employeeStore) Get(_ context.Context, id int64) (model.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	employee, ok := e.s.employees[id]
	if !ok {
		return model.Employee{}, notFound("employee", id)
	}
	return cloneEmployee(employee), nil
}

func (e employeeStore) Create(_ context.Context, submission model.EmployeeSubmission) (model.Employee, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if err := e.s.checkSubmission(submission); err != nil {
		return model.Employee{}, err
	}
	e.s.nextEmp++
	employee := model.Employee{
		ID:             e.s.nextEmp,
		FormTemplateID: submission.FormTemplateID,
		IsActive:       true,
		FieldValues:    fieldValues(submission),
		CreatedAt:      e.s.now(),
	}
	employee.UpdatedAt = employee.CreatedAt
	e.s.employees[employee.ID] = employee
	e.s.logger.Debug("employee created", zap.Int64("employee_id", employee.ID), zap.Int64("template_id", employee.FormTemplateID))
	return cloneEmployee(employee), nil
}

func (e employeeStore) Update(_ context.Context, id int64, submission model.EmployeeSubmission) (model.Employee, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	existing, ok := e.s.employees[id]
	if !ok {
		return model.Employee{}, notFound("employee", id)
	}
	if submission.FormTemplateID != existing.FormTemplateID {
		return model.Employee{}, &store.CollaboratorError{
			Message: "Form template cannot be changed",
			Fields:  map[string][]string{"form_template_id": {"Form template cannot be changed"}},
		}
	}
	if err := e.s.checkSubmission(submission); err != nil {
		return model.Employee{}, err
	}
	existing.FieldValues = fieldValues(submission)
	existing.UpdatedAt = e.s.now()
	e.s.employees[id] = existing
	e.s.logger.Debug("employee updated", zap.Int64("employee_id", id))
	return cloneEmployee(existing), nil
}

func (e employeeStore) Delete(_ context.Context, id int64) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if _, ok := e.s.employees[id]; !ok {
		return notFound("employee", id)
	}
	delete(e.s.employees, id)
	return nil
}

func (s *Store) checkSubmission(submission model.EmployeeSubmission) error {
	if err := submission.Validate(); err != nil {
		return store.Newf(err, "%s", err.Error())
	}
	template, ok := s.templates[submission.FormTemplateID]
	if !ok {
		return &store.CollaboratorError{
			Message: "Form template does not exist",
			Fields:  map[string][]string{"form_template_id": {"Form template does not exist"}},
		}
	}
	for idx, value := range submission.FieldValues {
		if _, ok := template.Field(model.FieldIDFromInt(value.FormFieldID)); !ok {
			key := fmt.Sprintf("field_values.%d", idx)
			return &store.CollaboratorError{
				Message: "Field does not belong to the form template",
				Fields:  map[string][]string{key: {"Field does not belong to the form template"}},
			}
		}
	}
	return nil
}

func fieldValues(submission model.EmployeeSubmission) []model.EmployeeFieldValue {
	out := make([]model.EmployeeFieldValue, 0, len(submission.FieldValues))
	for _, value := range submission.FieldValues {
		out = append(out, model.EmployeeFieldValue{
			FormFieldID: model.FieldIDFromInt(value.FormFieldID),
			FieldValue:  value.FieldValue,
		})
	}
	return out
}

func cloneEmployee(employee model.Employee) model.Employee {
	out := employee
	out.FieldValues = append([]model.EmployeeFieldValue(nil), employee.FieldValues...)
	return out
}

func notFound(kind string, id int64) error {
	return &store.CollaboratorError{
		Message: fmt.Sprintf("%s %d not found", kind, id),
		Cause:   store.ErrNotFound,
	}
}
