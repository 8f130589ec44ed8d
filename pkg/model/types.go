package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType is the fixed enumeration of input kinds a template field can take.
type FieldType string

const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeEmail    FieldType = "EMAIL"
	FieldTypePassword FieldType = "PASSWORD"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeDate     FieldType = "DATE"
	FieldTypePhone    FieldType = "PHONE"
	FieldTypeTextarea FieldType = "TEXTAREA"
	FieldTypeSelect   FieldType = "SELECT"
	FieldTypeCheckbox FieldType = "CHECKBOX"
	FieldTypeRadio    FieldType = "RADIO"
	FieldTypeFile     FieldType = "FILE"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePassword,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypePhone,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeFile,
}

// FieldTypes returns the enumeration in declaration order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

// ParseFieldType resolves a raw type tag. Matching is case-insensitive and
// anything outside the enumeration resolves to FieldTypeText.
func ParseFieldType(raw string) FieldType {
	candidate := FieldType(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate
	}
	return FieldTypeText
}

// Valid reports whether t is part of the enumeration.
func (t FieldType) Valid() bool {
	for _, known := range fieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type pick from FieldOptions.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeCheckbox, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// FieldOption is one selectable choice of a SELECT, CHECKBOX or RADIO field.
type FieldOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// ValidationRules holds constraints applied on top of requiredness. Nil
// bounds mean "unbounded".
type ValidationRules struct {
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// IsZero reports whether no constraint is set.
func (r *ValidationRules) IsZero() bool {
	return r == nil || (r.MinLength == nil && r.MaxLength == nil && strings.TrimSpace(r.Pattern) == "")
}

// Clone returns a deep copy of r.
func (r *ValidationRules) Clone() *ValidationRules {
	if r == nil {
		return nil
	}
	out := &ValidationRules{Pattern: r.Pattern}
	if r.MinLength != nil {
		v := *r.MinLength
		out.MinLength = &v
	}
	if r.MaxLength != nil {
		v := *r.MaxLength
		out.MaxLength = &v
	}
	return out
}

// FieldID identifies a field within its template. Persisted fields carry the
// backend's numeric id; fields added in the designer carry a placeholder
// string until the template is saved. The JSON form accepts both numbers and
// strings and writes numbers back as numbers.
type FieldID string

// Int64 returns the numeric id of a persisted field.
func (id FieldID) Int64() (int64, bool) {
	value, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Persisted reports whether the id came from the backend.
func (id FieldID) Persisted() bool {
	_, ok := id.Int64()
	return ok
}

func (id FieldID) String() string {
	return string(id)
}

// FieldIDFromInt builds the id of a persisted field.
func FieldIDFromInt(value int64) FieldID {
	return FieldID(strconv.FormatInt(value, 10))
}

// MarshalJSON writes persisted ids as JSON numbers.
func (id FieldID) MarshalJSON() ([]byte, error) {
	if value, ok := id.Int64(); ok {
		return []byte(strconv.FormatInt(value, 10)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *FieldID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*id = ""
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("model: field id: %w", err)
		}
		*id = FieldID(raw)
		return nil
	default:
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			return fmt.Errorf("model: field id: %w", err)
		}
		*id = FieldID(number.String())
		return nil
	}
}

// FieldDefinition describes one answerable question of a template.
type FieldDefinition struct {
	ID              FieldID          `json:"id,omitempty" yaml:"id,omitempty"`
	FieldName       string           `json:"fieldName" yaml:"fieldName"`
	FieldLabel      string           `json:"fieldLabel" yaml:"fieldLabel"`
	FieldType       FieldType        `json:"fieldType" yaml:"fieldType"`
	IsRequired      bool             `json:"isRequired" yaml:"isRequired"`
	FieldOrder      int              `json:"fieldOrder" yaml:"fieldOrder"`
	FieldOptions    []FieldOption    `json:"fieldOptions" yaml:"fieldOptions,omitempty"`
	ValidationRules *ValidationRules `json:"validationRules" yaml:"validationRules,omitempty"`
}

// Clone returns a deep copy of f.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.FieldOptions != nil {
		out.FieldOptions = append([]FieldOption(nil), f.FieldOptions...)
	}
	out.ValidationRules = f.ValidationRules.Clone()
	return out
}

// HasOption reports whether value is one of the declared option values.
func (f FieldDefinition) HasOption(value string) bool {
	for _, option := range f.FieldOptions {
		if option.Value == value {
			return true
		}
	}
	return false
}

// FormTemplate is a named, ordered schema of field definitions. A zero ID
// means the template has not been persisted yet.
type FormTemplate struct {
	ID          int64             `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    bool              `json:"isActive" yaml:"isActive"`
	Fields      []FieldDefinition `json:"fields" yaml:"fields"`
	CreatedAt   time.Time         `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   time.Time         `json:"updatedAt,omitempty" yaml:"-"`
}

// Persisted reports whether the template carries a backend id.
func (t FormTemplate) Persisted() bool {
	return t.ID != 0
}

// Clone returns a deep copy of t.
func (t FormTemplate) Clone() FormTemplate {
	out := t
	if t.Fields != nil {
		out.Fields = make([]FieldDefinition, len(t.Fields))
		for idx, field := range t.Fields {
			out.Fields[idx] = field.Clone()
		}
	}
	return out
}

// Field looks up a field definition by id.
func (t FormTemplate) Field(id FieldID) (FieldDefinition, bool) {
	if id == "" {
		return FieldDefinition{}, false
	}
	for _, field := range t.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// EmployeeFieldValue is one answer of an employee record. Values are always
// strings; multi-choice answers use the encoding produced by the renderer for
// that field type.
type EmployeeFieldValue struct {
	FormFieldID FieldID `json:"formFieldId"`
	FieldValue  string  `json:"fieldValue"`
}

// Employee is one filled-out instance of a template. FormTemplateID never
// changes after creation.
type Employee struct {
	ID             int64                `json:"id"`
	FormTemplateID int64                `json:"formTemplateId"`
	IsActive       bool                 `json:"isActive"`
	FieldValues    []EmployeeFieldValue `json:"fieldValues"`
	CreatedAt      time.Time            `json:"createdAt,omitempty"`
	UpdatedAt      time.Time            `json:"updatedAt,omitempty"`
}

// Value returns the stored answer for a field id.
func (e Employee) Value(id FieldID) (string, bool) {
	for _, value := range e.FieldValues {
		if value.FormFieldID == id {
			return value.FieldValue, true
		}
	}
	return "", false
}
