package dynamicform

import "errors"

// State is the lifecycle position of an Engine.
type State int

const (
	StateNoTemplate State = iota
	StateTemplateSelected
	StateSubmitting
	StateSubmitSucceeded
	StateSubmitFailed
)

func (s State) String() string {
	switch s {
	case StateNoTemplate:
		return "no_template_selected"
	case StateTemplateSelected:
		return "template_selected"
	case StateSubmitting:
		return "submitting"
	case StateSubmitSucceeded:
		return "submit_succeeded"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}

var (
	ErrNoTemplate      = errors.New("dynamicform: no template selected")
	ErrSubmitInFlight  = errors.New("dynamicform: submit already in progress")
	ErrTemplateLocked  = errors.New("dynamicform: template cannot change while editing an employee")
	ErrUnknownTemplate = errors.New("dynamicform: unknown template")
	ErrUnknownField    = errors.New("dynamicform: field not part of the selected template")
	ErrClosed          = errors.New("dynamicform: engine closed")
)

// Messages shown by the form.
const (
	TemplateRequiredMessage = "Form template is required"
	NoFieldsMessage         = "No fields defined for this template"
	CreateLabel             = "Create Employee"
	UpdateLabel             = "Update Employee"
)
