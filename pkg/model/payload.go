package model

import (
	"fmt"
	"strings"
	"time"
)

// TemplatePayload is the snake-cased wire shape sent when creating or
// updating a template.
type TemplatePayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Fields      []FieldPayload `json:"fields"`
}

// FieldPayload is one field entry of a TemplatePayload.
type FieldPayload struct {
	FieldName       string           `json:"field_name"`
	FieldLabel      string           `json:"field_label"`
	FieldType       FieldType        `json:"field_type"`
	IsRequired      bool             `json:"is_required"`
	FieldOrder      int              `json:"field_order"`
	FieldOptions    []FieldOption    `json:"field_options"`
	ValidationRules *ValidationRules `json:"validation_rules"`
}

// Payload converts a template into its wire shape as-is. Callers that need
// finalized names and ordering go through the designer.
func (t FormTemplate) Payload() TemplatePayload {
	payload := TemplatePayload{
		Name:        t.Name,
		Description: t.Description,
		Fields:      make([]FieldPayload, 0, len(t.Fields)),
	}
	for _, field := range t.Fields {
		payload.Fields = append(payload.Fields, field.Payload())
	}
	return payload
}

// Payload converts a field definition into its wire shape.
func (f FieldDefinition) Payload() FieldPayload {
	var options []FieldOption
	if len(f.FieldOptions) > 0 {
		options = append([]FieldOption(nil), f.FieldOptions...)
	}
	return FieldPayload{
		FieldName:       f.FieldName,
		FieldLabel:      f.FieldLabel,
		FieldType:       f.FieldType,
		IsRequired:      f.IsRequired,
		FieldOrder:      f.FieldOrder,
		FieldOptions:    options,
		ValidationRules: f.ValidationRules.Clone(),
	}
}

// TemplateRecord is the snake-cased shape the backend returns for a template.
type TemplateRecord struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsActive    *bool         `json:"is_active,omitempty"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
	Fields      []FieldRecord `json:"fields"`
}

// FieldRecord is the backend shape of one template field.
type FieldRecord struct {
	ID              FieldID          `json:"id"`
	FieldName       string           `json:"field_name"`
	FieldLabel      string           `json:"field_label"`
	FieldType       string           `json:"field_type"`
	IsRequired      bool             `json:"is_required"`
	FieldOrder      int              `json:"field_order"`
	FieldOptions    []FieldOption    `json:"field_options"`
	ValidationRules *ValidationRules `json:"validation_rules"`
}

// Template converts a backend record into a FormTemplate with fields sorted
// by their stored order.
func (r TemplateRecord) Template() FormTemplate {
	template := FormTemplate{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    true,
		Fields:      make([]FieldDefinition, 0, len(r.Fields)),
	}
	if r.IsActive != nil {
		template.IsActive = *r.IsActive
	}
	if r.CreatedAt != nil {
		template.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		template.UpdatedAt = *r.UpdatedAt
	}
	for _, field := range r.Fields {
		template.Fields = append(template.Fields, field.Definition())
	}
	template.Fields = SortFields(template.Fields)
	return template
}

// Definition converts a backend field record into a FieldDefinition.
func (r FieldRecord) Definition() FieldDefinition {
	return FieldDefinition{
		ID:              r.ID,
		FieldName:       r.FieldName,
		FieldLabel:      r.FieldLabel,
		FieldType:       ParseFieldType(r.FieldType),
		IsRequired:      r.IsRequired,
		FieldOrder:      r.FieldOrder,
		FieldOptions:    r.FieldOptions,
		ValidationRules: r.ValidationRules,
	}
}

// EmployeeSubmission is the wire shape sent when creating or updating an
// employee record.
type EmployeeSubmission struct {
	FormTemplateID int64               `json:"form_template_id"`
	FieldValues    []FieldValuePayload `json:"field_values"`
}

// FieldValuePayload pairs a persisted field id with its answer.
type FieldValuePayload struct {
	FormFieldID int64  `json:"form_field_id"`
	FieldValue  string `json:"field_value"`
}

// EmployeeRecord is the backend shape of an employee record.
type EmployeeRecord struct {
	ID             int64              `json:"id"`
	FormTemplateID int64              `json:"form_template_id"`
	IsActive       *bool              `json:"is_active,omitempty"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty"`
	FieldValues    []FieldValueRecord `json:"field_values"`
}

// FieldValueRecord is the backend shape of one stored answer. The field is
// either nested (read responses) or referenced by id.
type FieldValueRecord struct {
	FormField   *FieldRecord `json:"form_field,omitempty"`
	FormFieldID FieldID      `json:"form_field_id,omitempty"`
	FieldValue  string       `json:"field_value"`
}

// Employee converts a backend record into an Employee.
func (r EmployeeRecord) Employee() Employee {
	employee := Employee{
		ID:             r.ID,
		FormTemplateID: r.FormTemplateID,
		IsActive:       true,
		FieldValues:    make([]EmployeeFieldValue, 0, len(r.FieldValues)),
	}
	if r.IsActive != nil {
		employee.IsActive = *r.IsActive
	}
	if r.CreatedAt != nil {
		employee.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		employee.UpdatedAt = *r.UpdatedAt
	}
	for _, value := range r.FieldValues {
		id := value.FormFieldID
		if value.FormField != nil && value.FormField.ID != "" {
			id = value.FormField.ID
		}
		if id == "" {
			continue
		}
		employee.FieldValues = append(employee.FieldValues, EmployeeFieldValue{
			FormFieldID: id,
			FieldValue:  value.FieldValue,
		})
	}
	return employee
}

// Validate checks the structural requirements of a submission.
func (s EmployeeSubmission) Validate() error {
	if s.FormTemplateID <= 0 {
		return fmt.Errorf("model: submission requires a form template id")
	}
	seen := make(map[int64]struct{}, len(s.FieldValues))
	for _, value := range s.FieldValues {
		if value.FormFieldID <= 0 {
			return fmt.Errorf("model: submission contains invalid field id %d", value.FormFieldID)
		}
		if _, dup := seen[value.FormFieldID]; dup {
			return fmt.Errorf("model: submission repeats field id %d", value.FormFieldID)
		}
		seen[value.FormFieldID] = struct{}{}
	}
	return nil
}

// Validate checks the structural requirements of a template payload.
func (p TemplatePayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("model: template name is required")
	}
	for idx, field := range p.Fields {
		if strings.TrimSpace(field.FieldName) == "" {
			return fmt.Errorf("model: field %d has no name", idx)
		}
		if field.FieldOrder != idx {
			return fmt.Errorf("model: field %q has order %d at position %d", field.FieldName, field.FieldOrder, idx)
		}
	}
	return nil
}

// Template converts a payload back into an unpersisted FormTemplate.
func (p TemplatePayload) Template() FormTemplate {
	template := FormTemplate{
		Name:        p.Name,
		Description: p.Description,
		IsActive:    true,
		Fields:      make([]FieldDefinition, 0, len(p.Fields)),
	}
	for _, field := range p.Fields {
		template.Fields = append(template.Fields, FieldDefinition{
			FieldName:       field.FieldName,
			FieldLabel:      field.FieldLabel,
			FieldType:       ParseFieldType(string(field.FieldType)),
			IsRequired:      field.IsRequired,
			FieldOrder:      field.FieldOrder,
			FieldOptions:    field.FieldOptions,
			ValidationRules: field.ValidationRules.Clone(),
		})
	}
	return template
}
