// Package widgets holds the single table that maps every field type to the
// input widget used to render it.
package widgets

import (
	"sync"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// Kind identifies a widget family. Renderers dispatch on Kind, never on the
// raw field type.
type Kind string

const (
	KindText          Kind = "text"
	KindEmail         Kind = "email"
	KindPassword      Kind = "password"
	KindNumber        Kind = "number"
	KindDate          Kind = "date"
	KindTel           Kind = "tel"
	KindTextarea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindCheckboxGroup Kind = "checkbox-group"
	KindRadioGroup    Kind = "radio-group"
	KindFile          Kind = "file"
)

// BlankOptionLabel is the label of the "no selection" entry every select
// widget starts with.
const BlankOptionLabel = "Select an option"

// Widget describes how a field type is presented.
type Widget struct {
	Kind Kind
	// InputType is the HTML input type for single-line inputs; empty for
	// textarea, select and choice groups.
	InputType string
	// Template names the field partial used by template based renderers.
	Template string
	// Choices reports whether the widget renders the field's options.
	Choices bool
	// Multiple reports whether more than one option may be picked.
	Multiple bool
	// Placeholder reports whether the widget shows an "Enter {label}" hint.
	Placeholder bool
}

var table = map[model.FieldType]Widget{
	model.FieldTypeText:     {Kind: KindText, InputType: "text", Template: "fields/input.tmpl", Placeholder: true},
	model.FieldTypeEmail:    {Kind: KindEmail, InputType: "email", Template: "fields/input.tmpl", Placeholder: true},
	model.FieldTypePassword: {Kind: KindPassword, InputType: "password", Template: "fields/input.tmpl", Placeholder: true},
	model.FieldTypeNumber:   {Kind: KindNumber, InputType: "number", Template: "fields/input.tmpl", Placeholder: true},
	model.FieldTypeDate:     {Kind: KindDate, InputType: "date", Template: "fields/input.tmpl"},
	model.FieldTypePhone:    {Kind: KindTel, InputType: "tel", Template: "fields/input.tmpl", Placeholder: true},
	model.FieldTypeTextarea: {Kind: KindTextarea, Template: "fields/textarea.tmpl", Placeholder: true},
	model.FieldTypeSelect:   {Kind: KindSelect, Template: "fields/select.tmpl", Choices: true},
	model.FieldTypeCheckbox: {Kind: KindCheckboxGroup, Template: "fields/choices.tmpl", Choices: true, Multiple: true},
	model.FieldTypeRadio:    {Kind: KindRadioGroup, Template: "fields/choices.tmpl", Choices: true},
	model.FieldTypeFile:     {Kind: KindFile, InputType: "file", Template: "fields/input.tmpl"},
}

// For returns the widget for a field type. Types outside the enumeration
// resolve to the TEXT widget.
func For(fieldType model.FieldType) Widget {
	if widget, ok := table[fieldType]; ok {
		return widget
	}
	return table[model.ParseFieldType(string(fieldType))]
}

// Registry resolves widgets from the built-in table plus per-type template
// overrides. Kinds themselves cannot be overridden.
type Registry struct {
	mu        sync.RWMutex
	templates map[model.FieldType]string
}

// NewRegistry constructs a registry backed by the built-in table.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[model.FieldType]string)}
}

// OverrideTemplate swaps the partial used for a field type. Unknown types and
// blank names are ignored.
func (r *Registry) OverrideTemplate(fieldType model.FieldType, name string) {
	if r == nil || name == "" || !fieldType.Valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[fieldType] = name
}

// Resolve returns the widget for a field definition.
func (r *Registry) Resolve(field model.FieldDefinition) Widget {
	fieldType := model.ParseFieldType(string(field.FieldType))
	widget := For(fieldType)
	if r == nil {
		return widget
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.templates[fieldType]; ok {
		widget.Template = name
	}
	return widget
}
