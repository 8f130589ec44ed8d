package render

import "github.com/goliatone/go-emsforms/pkg/model"

// TemplateChoice is one entry of the template selector.
type TemplateChoice struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// FieldView pairs a field definition with its current answer and message.
type FieldView struct {
	Field model.FieldDefinition `json:"field"`
	Value string                `json:"value"`
	Error string                `json:"error,omitempty"`
}

// FormView is a read-only snapshot of a dynamic form, ready for rendering.
type FormView struct {
	Templates          []TemplateChoice `json:"templates"`
	SelectedTemplateID int64            `json:"selectedTemplateId"`
	Description        string           `json:"description,omitempty"`
	SelectorDisabled   bool             `json:"selectorDisabled"`
	SelectorError      string           `json:"selectorError,omitempty"`
	Editing            bool             `json:"editing"`
	EmployeeID         int64            `json:"employeeId,omitempty"`
	Fields             []FieldView      `json:"fields"`
	EmptyNote          string           `json:"emptyNote,omitempty"`
	SubmitLabel        string           `json:"submitLabel"`
	SubmitDisabled     bool             `json:"submitDisabled"`
	Submitting         bool             `json:"submitting"`
	FormErrors         []string         `json:"formErrors,omitempty"`
}

// DesignerView is a read-only snapshot of the template designer.
type DesignerView struct {
	TemplateID  int64                   `json:"templateId,omitempty"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Fields      []model.FieldDefinition `json:"fields"`
	FieldTypes  []model.FieldType       `json:"fieldTypes"`
	Saving      bool                    `json:"saving"`
	Error       string                  `json:"error,omitempty"`
}
