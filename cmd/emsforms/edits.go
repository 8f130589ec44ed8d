package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/designer"
	"github.com/goliatone/go-emsforms/pkg/model"
)

// listFlag collects repeated string flags.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// fieldSpec is a parsed -add value: "Label[:TYPE[:option,option]]". Options
// are either "value" or "Label=value".
type fieldSpec struct {
	label     string
	fieldType model.FieldType
	options   []model.FieldOption
}

func parseFieldSpec(raw string) (fieldSpec, error) {
	parts := strings.SplitN(raw, ":", 3)
	spec := fieldSpec{label: strings.TrimSpace(parts[0]), fieldType: model.FieldTypeText}
	if spec.label == "" {
		return fieldSpec{}, fmt.Errorf("field %q: label is required", raw)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		candidate := model.FieldType(strings.ToUpper(strings.TrimSpace(parts[1])))
		if !candidate.Valid() {
			return fieldSpec{}, fmt.Errorf("field %q: unknown type %q", raw, parts[1])
		}
		spec.fieldType = candidate
	}
	if len(parts) > 2 {
		for _, item := range strings.Split(parts[2], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			label, value, ok := strings.Cut(item, "=")
			if !ok {
				value = label
			}
			spec.options = append(spec.options, model.FieldOption{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
		}
	}
	return spec, nil
}

// parseIndexed splits "idx:rest".
func parseIndexed(raw string) (int, string, error) {
	head, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, "", fmt.Errorf("%q: expected index:value", raw)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, "", fmt.Errorf("%q: invalid index: %w", raw, err)
	}
	return idx, rest, nil
}

func parseMove(raw string) (int, int, error) {
	from, rest, err := parseIndexed(raw)
	if err != nil {
		return 0, 0, err
	}
	to, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, 0, fmt.Errorf("%q: invalid target index: %w", raw, err)
	}
	return from, to, nil
}

// designEdits are the designer mutations requested on the command line,
// applied in the order: remove, add, label, required, move.
type designEdits struct {
	name        string
	description string
	remove      listFlag
	add         listFlag
	label       listFlag
	required    listFlag
	move        listFlag
}

func (d designEdits) apply(engine *designer.Engine) error {
	if d.name != "" {
		engine.SetName(d.name)
	}
	if d.description != "" {
		engine.SetDescription(d.description)
	}
	for _, raw := range d.remove {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("remove %q: %w", raw, err)
		}
		if !engine.RemoveField(idx) {
			return fmt.Errorf("remove %d: no such field", idx)
		}
	}
	for _, raw := range d.add {
		spec, err := parseFieldSpec(raw)
		if err != nil {
			return err
		}
		engine.AddField()
		idx := len(engine.Fields()) - 1
		engine.UpdateLabel(idx, spec.label)
		engine.UpdateType(idx, spec.fieldType)
		if len(spec.options) > 0 {
			engine.UpdateOptions(idx, spec.options)
		}
	}
	for _, raw := range d.label {
		idx, text, err := parseIndexed(raw)
		if err != nil {
			return err
		}
		if !engine.UpdateLabel(idx, text) {
			return fmt.Errorf("label %d: no such field", idx)
		}
	}
	for _, raw := range d.required {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("required %q: %w", raw, err)
		}
		if !engine.UpdateRequired(idx, true) {
			return fmt.Errorf("required %d: no such field", idx)
		}
	}
	for _, raw := range d.move {
		from, to, err := parseMove(raw)
		if err != nil {
			return err
		}
		if !engine.Reorder(from, to) {
			return fmt.Errorf("move %d:%d: indexes must differ and be in range", from, to)
		}
	}
	return nil
}
