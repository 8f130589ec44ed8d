package vanilla

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/widgets"
)

// fieldMarkup wraps a control with its label and error chrome.
func (r *Renderer) fieldMarkup(field model.FieldDefinition, value, message string) (string, error) {
	control, err := r.controlMarkup(field, value, message)
	if err != nil {
		return "", err
	}
	widget := r.widgets.Resolve(field)
	label := plainText(model.SafeLabel(field.FieldLabel, field.FieldOrder))

	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	if message != "" {
		builder.WriteByte(' ')
		builder.WriteString(string(ClassInvalid))
	}
	builder.WriteString(`" data-field-id="`)
	builder.WriteString(html.EscapeString(string(field.ID)))
	builder.WriteString(`" data-widget="`)
	builder.WriteString(string(widget.Kind))
	builder.WriteString("\">\n")

	if widget.Choices && widget.Kind != widgets.KindSelect {
		builder.WriteString(`  <span id="`)
		builder.WriteString(domID(field.ID, "label"))
	} else {
		builder.WriteString(`  <label for="`)
		builder.WriteString(domID(field.ID, ""))
		builder.WriteString(`" id="`)
		builder.WriteString(domID(field.ID, "label"))
	}
	builder.WriteString(`" class="`)
	builder.WriteString(string(ClassLabel))
	builder.WriteString(`">`)
	builder.WriteString(label)
	if field.IsRequired {
		builder.WriteString(` <span class="`)
		builder.WriteString(string(ClassRequired))
		builder.WriteString(`">*</span>`)
	}
	if widget.Choices && widget.Kind != widgets.KindSelect {
		builder.WriteString("</span>\n")
	} else {
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if message != "" {
		builder.WriteString(`  <p id="`)
		builder.WriteString(domID(field.ID, "error"))
		builder.WriteString(`" class="`)
		builder.WriteString(string(ClassError))
		builder.WriteString(`" role="alert">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String(), nil
}

// controlMarkup renders only the widget partial for a field.
func (r *Renderer) controlMarkup(field model.FieldDefinition, value, message string) (string, error) {
	widget := r.widgets.Resolve(field)
	data := map[string]any{
		"field": widgetData(field, widget, value),
		"value": value,
		"error": message,
	}
	out, err := r.templates.RenderTemplate(widget.Template, data)
	if err != nil {
		return "", fmt.Errorf("render %s widget for field %q: %w", widget.Kind, field.ID, err)
	}
	return out, nil
}

func widgetData(field model.FieldDefinition, widget widgets.Widget, value string) map[string]any {
	label := plainText(model.SafeLabel(field.FieldLabel, field.FieldOrder))
	data := map[string]any{
		"id":          string(field.ID),
		"dom_id":      domID(field.ID, ""),
		"input_name":  InputName(field.ID),
		"name":        field.FieldName,
		"label":       label,
		"kind":        string(widget.Kind),
		"input_type":  widget.InputType,
		"required":    field.IsRequired,
		"blank_label": widgets.BlankOptionLabel,
		"placeholder": "",
		"min_length":  "",
		"max_length":  "",
		"pattern":     "",
	}
	if widget.Placeholder {
		data["placeholder"] = "Enter " + label
	}
	if rules := field.ValidationRules; !rules.IsZero() {
		if rules.MinLength != nil {
			data["min_length"] = strconv.Itoa(*rules.MinLength)
		}
		if rules.MaxLength != nil {
			data["max_length"] = strconv.Itoa(*rules.MaxLength)
		}
		data["pattern"] = strings.TrimSpace(rules.Pattern)
	}
	if widget.Choices {
		choiceType := "radio"
		if widget.Multiple {
			choiceType = "checkbox"
		}
		data["choice_type"] = choiceType
		selected := selectedValues(widget, value)
		options := make([]map[string]any, 0, len(field.FieldOptions))
		for _, option := range field.FieldOptions {
			_, checked := selected[option.Value]
			options = append(options, map[string]any{
				"label":    plainText(optionLabel(option)),
				"value":    option.Value,
				"selected": checked,
			})
		}
		data["options"] = options
	}
	return data
}

func optionLabel(option model.FieldOption) string {
	if strings.TrimSpace(option.Label) != "" {
		return option.Label
	}
	return option.Value
}

// selectedValues decodes the current answer of a choice widget.
func selectedValues(widget widgets.Widget, value string) map[string]struct{} {
	out := make(map[string]struct{})
	if strings.TrimSpace(value) == "" {
		return out
	}
	if !widget.Multiple {
		out[value] = struct{}{}
		return out
	}
	for _, picked := range model.DecodeChoices(value) {
		out[picked] = struct{}{}
	}
	return out
}
