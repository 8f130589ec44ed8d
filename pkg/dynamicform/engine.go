package dynamicform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/store"
	"github.com/goliatone/go-emsforms/pkg/validation"
)

// Engine owns the state of one data-entry form. Methods are safe for
// concurrent use; the store call made by Submit runs without the lock.
type Engine struct {
	mu        sync.Mutex
	employees store.EmployeeStore
	logger    *zap.Logger
	validator *validation.Validator

	templates []model.FormTemplate
	selected  *model.FormTemplate
	employee  *model.Employee

	values        map[model.FieldID]string
	fieldErrors   map[model.FieldID]string
	formErrors    []string
	selectorError string

	state  State
	closed bool
}

// New constructs an Engine offering templates for selection.
func New(employees store.EmployeeStore, templates []model.FormTemplate, opts ...Option) (*Engine, error) {
	if employees == nil {
		return nil, errors.New("dynamicform: employee store is required")
	}
	e := &Engine{
		employees:   employees,
		logger:      zap.NewNop(),
		validator:   validation.New(),
		values:      make(map[model.FieldID]string),
		fieldErrors: make(map[model.FieldID]string),
		state:       StateNoTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.templates = make([]model.FormTemplate, 0, len(templates))
	for _, template := range templates {
		sorted := template.Clone()
		sorted.Fields = model.SortFields(sorted.Fields)
		e.templates = append(e.templates, sorted)
	}
	return e, nil
}

// Open lists every template from the template store and constructs an
// Engine over them. Inactive templates are included so employees filled from
// them stay editable.
func Open(ctx context.Context, templates store.TemplateStore, employees store.EmployeeStore, opts ...Option) (*Engine, error) {
	if templates == nil {
		return nil, errors.New("dynamicform: template store is required")
	}
	list, err := templates.List(ctx, store.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("dynamicform: list templates: %w", store.AsCollaboratorError(err))
	}
	return New(employees, list, opts...)
}

// Edit switches the engine to editing an existing employee. The employee's
// template is selected and locked, and its stored answers are loaded. Answers
// for fields that no longer exist on the template are dropped.
func (e *Engine) Edit(employee model.Employee) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	template, ok := e.lookup(employee.FormTemplateID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTemplate, employee.FormTemplateID)
	}

	e.selected = &template
	copied := employee
	copied.FieldValues = append([]model.EmployeeFieldValue(nil), employee.FieldValues...)
	e.employee = &copied
	e.resetEntry()
	for _, value := range employee.FieldValues {
		if _, ok := template.Field(value.FormFieldID); !ok {
			e.logger.Warn("stored answer references a missing field",
				zap.Int64("employee_id", employee.ID),
				zap.String("field_id", value.FormFieldID.String()),
			)
			continue
		}
		e.values[value.FormFieldID] = value.FieldValue
	}
	e.state = StateTemplateSelected
	return nil
}

// SelectTemplate chooses the template to fill. While creating a new employee
// every previously entered value is discarded; while editing the template is
// locked. An id of zero clears the selection.
func (e *Engine) SelectTemplate(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.employee != nil {
		return ErrTemplateLocked
	}
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if id == 0 {
		e.selected = nil
		e.resetEntry()
		e.state = StateNoTemplate
		return nil
	}
	template, ok := e.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTemplate, id)
	}
	e.selected = &template
	e.resetEntry()
	e.selectorError = ""
	e.state = StateTemplateSelected
	return nil
}

// SetValue records the answer for a field of the selected template and
// recomputes that field's validation message.
func (e *Engine) SetValue(id model.FieldID, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	field, err := e.field(id)
	if err != nil {
		return err
	}
	e.setValue(field, value)
	return nil
}

// ToggleOption checks or unchecks one option of a CHECKBOX field. The stored
// answer is the JSON array of checked values in option order.
func (e *Engine) ToggleOption(id model.FieldID, option string, checked bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	field, err := e.field(id)
	if err != nil {
		return err
	}
	if field.FieldType != model.FieldTypeCheckbox {
		return fmt.Errorf("dynamicform: field %q is not a checkbox group", id)
	}
	if !field.HasOption(option) {
		return fmt.Errorf("dynamicform: field %q has no option %q", id, option)
	}

	picked := make([]string, 0, len(field.FieldOptions))
	for _, current := range model.DecodeChoices(e.values[id]) {
		if current != option {
			picked = append(picked, current)
		}
	}
	if checked {
		picked = append(picked, option)
	}
	e.setValue(field, model.EncodeChoices(field.FieldOptions, picked))
	return nil
}

// Value returns the current answer for a field.
func (e *Engine) Value(id model.FieldID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[id]
}

// Values returns a copy of every entered answer.
func (e *Engine) Values() map[model.FieldID]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[model.FieldID]string, len(e.values))
	for id, value := range e.values {
		out[id] = value
	}
	return out
}

// Checked reports whether option is checked on a CHECKBOX field.
func (e *Engine) Checked(id model.FieldID, option string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, value := range model.DecodeChoices(e.values[id]) {
		if value == option {
			return true
		}
	}
	return false
}

// Validate checks every field of the selected template and replaces the
// displayed field messages with the result. Without a selected template it
// reports a single form-level issue.
func (e *Engine) Validate() validation.Errors {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validate()
}

// CanSubmit reports whether Submit would reach the store.
func (e *Engine) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == nil || e.state == StateSubmitting || e.closed {
		return false
	}
	return len(e.validator.Form(e.selected.Fields, e.values)) == 0
}

// Submit validates the form and sends it to the employee store, creating a
// new record or updating the edited one. A failed call keeps every entered
// value, surfaces the store's message and maps its field messages onto the
// form. After a successful create the engine continues in edit mode on the
// new record.
func (e *Engine) Submit(ctx context.Context) (model.Employee, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return model.Employee{}, ErrClosed
	}
	if e.state == StateSubmitting {
		e.mu.Unlock()
		e.logger.Debug("ignoring submit while another is in flight")
		return model.Employee{}, ErrSubmitInFlight
	}
	if issues := e.validate(); len(issues) > 0 {
		e.state = e.idleState()
		noTemplate := e.selected == nil
		e.mu.Unlock()
		if noTemplate {
			return model.Employee{}, fmt.Errorf("%w: %w", ErrNoTemplate, issues)
		}
		return model.Employee{}, issues
	}

	template := e.selected.Clone()
	submission, submitted := e.submission(template)
	var employeeID int64
	if e.employee != nil {
		employeeID = e.employee.ID
	}
	e.formErrors = nil
	e.state = StateSubmitting
	e.mu.Unlock()

	e.logger.Info("submitting employee",
		zap.Int64("template_id", template.ID),
		zap.Int64("employee_id", employeeID),
		zap.Int("values", len(submission.FieldValues)),
	)

	var (
		saved model.Employee
		err   error
	)
	if employeeID != 0 {
		saved, err = e.employees.Update(ctx, employeeID, submission)
	} else {
		saved, err = e.employees.Create(ctx, submission)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.logger.Debug("discarding submit response for a closed form", zap.Int64("employee_id", saved.ID))
		if err != nil {
			return model.Employee{}, fmt.Errorf("dynamicform: submit: %w", err)
		}
		return saved, nil
	}

	if err != nil {
		collaborator := store.AsCollaboratorError(err)
		mapping := render.MapErrorPayload(template.Fields, submitted, collaborator.Fields)
		for id, messages := range mapping.Fields {
			if len(messages) > 0 {
				e.fieldErrors[id] = messages[0]
			}
		}
		e.formErrors = render.MergeFormErrors([]string{collaborator.Message}, mapping.Form...)
		e.state = StateSubmitFailed
		e.logger.Warn("employee submit failed", zap.Int64("template_id", template.ID), zap.Error(err))
		return model.Employee{}, fmt.Errorf("dynamicform: submit: %w", collaborator)
	}

	e.state = StateSubmitSucceeded
	if e.employee == nil {
		e.logger.Info("employee created", zap.Int64("employee_id", saved.ID))
	} else {
		e.logger.Info("employee updated", zap.Int64("employee_id", saved.ID))
	}
	copied := saved
	copied.FieldValues = append([]model.EmployeeFieldValue(nil), saved.FieldValues...)
	e.employee = &copied
	return saved, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Editing reports whether an existing employee is being edited.
func (e *Engine) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.employee != nil
}

// Employee returns the edited employee, if any.
func (e *Engine) Employee() (model.Employee, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.employee == nil {
		return model.Employee{}, false
	}
	return *e.employee, true
}

// Template returns the selected template, if any.
func (e *Engine) Template() (model.FormTemplate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return model.FormTemplate{}, false
	}
	return e.selected.Clone(), true
}

// Close detaches the engine. Submits that complete afterwards are not applied.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// View returns a render snapshot of the form. Fields are ordered by
// FieldOrder and fields without an id are left out.
func (e *Engine) View() render.FormView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := render.FormView{
		Templates:        make([]render.TemplateChoice, 0, len(e.templates)),
		SelectorDisabled: e.employee != nil,
		SelectorError:    e.selectorError,
		Editing:          e.employee != nil,
		Fields:           []render.FieldView{},
		SubmitLabel:      CreateLabel,
		SubmitDisabled:   e.selected == nil || e.state == StateSubmitting,
		Submitting:       e.state == StateSubmitting,
		FormErrors:       append([]string(nil), e.formErrors...),
	}
	if e.employee != nil {
		view.EmployeeID = e.employee.ID
		view.SubmitLabel = UpdateLabel
	}
	for _, template := range e.templates {
		choice := render.TemplateChoice{ID: template.ID, Name: template.Name}
		if e.selected != nil && e.selected.ID == template.ID {
			choice.Selected = true
		}
		view.Templates = append(view.Templates, choice)
	}
	if e.selected == nil {
		return view
	}

	view.SelectedTemplateID = e.selected.ID
	view.Description = e.selected.Description
	for _, field := range e.selected.Fields {
		if field.ID == "" {
			continue
		}
		view.Fields = append(view.Fields, render.FieldView{
			Field: field.Clone(),
			Value: e.values[field.ID],
			Error: e.fieldErrors[field.ID],
		})
	}
	if len(view.Fields) == 0 {
		view.EmptyNote = NoFieldsMessage
	}
	return view
}

func (e *Engine) lookup(id int64) (model.FormTemplate, bool) {
	for _, template := range e.templates {
		if template.ID == id {
			return template.Clone(), true
		}
	}
	return model.FormTemplate{}, false
}

func (e *Engine) field(id model.FieldID) (model.FieldDefinition, error) {
	if e.selected == nil {
		return model.FieldDefinition{}, ErrNoTemplate
	}
	field, ok := e.selected.Field(id)
	if !ok {
		return model.FieldDefinition{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return field, nil
}

func (e *Engine) setValue(field model.FieldDefinition, value string) {
	e.values[field.ID] = value
	if issue := e.validator.Field(field, value); issue != nil {
		e.fieldErrors[field.ID] = issue.Message
	} else {
		delete(e.fieldErrors, field.ID)
	}
	if e.state == StateSubmitFailed || e.state == StateSubmitSucceeded {
		e.state = StateTemplateSelected
	}
}

func (e *Engine) validate() validation.Errors {
	if e.selected == nil {
		e.selectorError = TemplateRequiredMessage
		return validation.Errors{{Message: TemplateRequiredMessage}}
	}
	e.selectorError = ""
	issues := e.validator.Form(e.selected.Fields, e.values)
	e.fieldErrors = make(map[model.FieldID]string, len(issues))
	for _, issue := range issues {
		if _, exists := e.fieldErrors[issue.FieldID]; !exists {
			e.fieldErrors[issue.FieldID] = issue.Message
		}
	}
	return issues
}

// submission pairs each answered field with its numeric id, in template
// order. Blank answers and fields without a persisted id are left out.
func (e *Engine) submission(template model.FormTemplate) (model.EmployeeSubmission, []model.FieldID) {
	out := model.EmployeeSubmission{
		FormTemplateID: template.ID,
		FieldValues:    []model.FieldValuePayload{},
	}
	submitted := make([]model.FieldID, 0, len(template.Fields))
	for _, field := range template.Fields {
		value, ok := e.values[field.ID]
		if !ok || validation.IsEmpty(field.FieldType, value) {
			continue
		}
		id, persisted := field.ID.Int64()
		if !persisted {
			e.logger.Warn("skipping answer for an unsaved field", zap.String("field_id", field.ID.String()))
			continue
		}
		out.FieldValues = append(out.FieldValues, model.FieldValuePayload{FormFieldID: id, FieldValue: value})
		submitted = append(submitted, field.ID)
	}
	return out, submitted
}

func (e *Engine) resetEntry() {
	e.values = make(map[model.FieldID]string)
	e.fieldErrors = make(map[model.FieldID]string)
	e.formErrors = nil
}

func (e *Engine) idleState() State {
	if e.selected == nil {
		return StateNoTemplate
	}
	return StateTemplateSelected
}
