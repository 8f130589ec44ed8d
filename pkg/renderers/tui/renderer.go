package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/validation"
	"github.com/goliatone/go-emsforms/pkg/widgets"
)

// Renderer prompts for field values in a terminal. It implements
// render.FieldRenderer for single fields and render.Renderer for whole
// dynamic forms.
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
	validator    *validation.Validator
	widgets      *widgets.Registry
}

var (
	_ render.Renderer      = (*Renderer)(nil)
	_ render.FieldRenderer = (*Renderer)(nil)
)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		widgets:      widgets.NewRegistry(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	if r.validator == nil {
		r.validator = validation.New()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// RenderField prompts for one field, seeding the prompt with value. Invalid
// answers are reported through the driver and asked again. The accepted
// answer is passed to onChange before returning.
func (r *Renderer) RenderField(ctx context.Context, field model.FieldDefinition, value string, onChange render.ChangeFunc) (render.FieldOutput, error) {
	if ctx == nil {
		return render.FieldOutput{}, errors.New("tui: context is required")
	}
	widget := r.widgets.Resolve(field)
	label := model.SafeLabel(field.FieldLabel, field.FieldOrder)

	if widget.Choices && len(field.FieldOptions) == 0 {
		out := render.FieldOutput{FieldID: field.ID, Widget: widget}
		if issue := r.validator.Field(field, ""); issue != nil {
			out.Error = issue.Message
		}
		return out, r.driver.Info(ctx, label+": no options defined")
	}

	for {
		if err := ctx.Err(); err != nil {
			return render.FieldOutput{}, err
		}
		answer, err := r.prompt(ctx, field, widget, label, value)
		if err != nil {
			return render.FieldOutput{}, err
		}
		if issue := r.validator.Field(field, answer); issue != nil {
			if err := r.driver.Info(ctx, issue.Message); err != nil {
				return render.FieldOutput{}, err
			}
			value = answer
			continue
		}
		if onChange != nil {
			if err := onChange(field.ID, answer); err != nil {
				return render.FieldOutput{}, fmt.Errorf("tui: apply %q: %w", field.ID, err)
			}
		}
		return render.FieldOutput{FieldID: field.ID, Widget: widget, Value: answer}, nil
	}
}

func (r *Renderer) prompt(ctx context.Context, field model.FieldDefinition, widget widgets.Widget, label, value string) (string, error) {
	message := label
	if field.IsRequired {
		message += " *"
	}
	help := helpText(field, widget)

	switch widget.Kind {
	case widgets.KindPassword:
		return r.driver.Password(ctx, InputConfig{Message: message, Help: help})
	case widgets.KindTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: value, Help: help})
	case widgets.KindSelect, widgets.KindRadioGroup:
		return r.promptSingle(ctx, field, widget, message, help, value)
	case widgets.KindCheckboxGroup:
		return r.promptMultiple(ctx, field, message, help, value)
	default:
		return r.driver.Input(ctx, InputConfig{Message: message, Default: value, Help: help})
	}
}

func (r *Renderer) promptSingle(ctx context.Context, field model.FieldDefinition, widget widgets.Widget, message, help, value string) (string, error) {
	labels := make([]string, 0, len(field.FieldOptions)+1)
	values := make([]string, 0, len(field.FieldOptions)+1)
	if widget.Kind == widgets.KindSelect {
		labels = append(labels, widgets.BlankOptionLabel)
		values = append(values, "")
	}
	for _, option := range field.FieldOptions {
		labels = append(labels, optionLabel(option))
		values = append(values, option.Value)
	}
	defaultIndex := -1
	for idx, candidate := range values {
		if value != "" && candidate == value {
			defaultIndex = idx
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: defaultIndex, Help: help})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(values) {
		return "", nil
	}
	return values[idx], nil
}

func (r *Renderer) promptMultiple(ctx context.Context, field model.FieldDefinition, message, help, value string) (string, error) {
	labels := make([]string, len(field.FieldOptions))
	for idx, option := range field.FieldOptions {
		labels[idx] = optionLabel(option)
	}
	current := make(map[string]struct{})
	for _, picked := range model.DecodeChoices(value) {
		current[picked] = struct{}{}
	}
	var defaults []int
	for idx, option := range field.FieldOptions {
		if _, ok := current[option.Value]; ok {
			defaults = append(defaults, idx)
		}
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, DefaultIndex: -1, Help: help})
	if err != nil {
		return "", err
	}
	picked := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.FieldOptions) {
			picked = append(picked, field.FieldOptions[idx].Value)
		}
	}
	return model.EncodeChoices(field.FieldOptions, picked), nil
}

// Render prompts for every field of a form snapshot, in view order, and
// serializes the answers.
func (r *Renderer) Render(ctx context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if view.SelectedTemplateID == 0 {
		return nil, errors.New("tui: no form template selected")
	}

	answers := make([]answer, 0, len(view.Fields))
	for _, fv := range view.Fields {
		out, err := r.RenderField(ctx, fv.Field, fv.Value, nil)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer{field: fv.Field, value: out.Value})
	}
	return r.serialize(view.SelectedTemplateID, answers)
}

// Form is the slice of the dynamic form engine Fill drives.
type Form interface {
	View() render.FormView
	SelectTemplate(id int64) error
	SetValue(id model.FieldID, value string) error
}

// Fill walks a dynamic form interactively: it asks for a template when none
// is selected (and the selector is enabled), prompts each field and feeds the
// answers to the form. It returns whether the user confirmed submission.
func (r *Renderer) Fill(ctx context.Context, form Form) (bool, error) {
	if form == nil {
		return false, errors.New("tui: form is required")
	}
	view := form.View()
	if view.SelectedTemplateID == 0 {
		if view.SelectorDisabled || len(view.Templates) == 0 {
			return false, ErrNoTemplates
		}
		names := make([]string, len(view.Templates))
		for idx, choice := range view.Templates {
			names[idx] = choice.Name
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Form Template *", Options: names, DefaultIndex: -1})
		if err != nil {
			return false, err
		}
		if idx < 0 || idx >= len(view.Templates) {
			return false, ErrNoTemplates
		}
		if err := form.SelectTemplate(view.Templates[idx].ID); err != nil {
			return false, fmt.Errorf("tui: select template: %w", err)
		}
		view = form.View()
	}

	if len(view.Fields) == 0 && view.EmptyNote != "" {
		if err := r.driver.Info(ctx, view.EmptyNote); err != nil {
			return false, err
		}
	}
	for _, fv := range view.Fields {
		if _, err := r.RenderField(ctx, fv.Field, fv.Value, form.SetValue); err != nil {
			return false, err
		}
	}

	return r.driver.Confirm(ctx, ConfirmConfig{Message: form.View().SubmitLabel + "?", Default: true})
}

type answer struct {
	field model.FieldDefinition
	value string
}

func (r *Renderer) serialize(templateID int64, answers []answer) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var b strings.Builder
		for _, a := range answers {
			b.WriteString(model.SafeLabel(a.field.FieldLabel, a.field.FieldOrder))
			b.WriteString(": ")
			b.WriteString(a.value)
			b.WriteByte('\n')
		}
		return []byte(b.String()), nil
	}

	submission := model.EmployeeSubmission{
		FormTemplateID: templateID,
		FieldValues:    make([]model.FieldValuePayload, 0, len(answers)),
	}
	for _, a := range answers {
		if a.value == "" {
			continue
		}
		id, ok := a.field.ID.Int64()
		if !ok {
			return nil, fmt.Errorf("tui: field %q has no persisted id", a.field.ID)
		}
		submission.FieldValues = append(submission.FieldValues, model.FieldValuePayload{FormFieldID: id, FieldValue: a.value})
	}
	return json.Marshal(submission)
}

func optionLabel(option model.FieldOption) string {
	if strings.TrimSpace(option.Label) != "" {
		return option.Label
	}
	return option.Value
}

func helpText(field model.FieldDefinition, widget widgets.Widget) string {
	var parts []string
	if widget.Placeholder {
		parts = append(parts, "Enter "+model.SafeLabel(field.FieldLabel, field.FieldOrder))
	}
	if rules := field.ValidationRules; !rules.IsZero() {
		if rules.MinLength != nil {
			parts = append(parts, "min "+strconv.Itoa(*rules.MinLength)+" characters")
		}
		if rules.MaxLength != nil {
			parts = append(parts, "max "+strconv.Itoa(*rules.MaxLength)+" characters")
		}
	}
	switch widget.Kind {
	case widgets.KindDate:
		parts = append(parts, "format YYYY-MM-DD")
	case widgets.KindFile:
		parts = append(parts, "path to the file")
	}
	return strings.Join(parts, "; ")
}
