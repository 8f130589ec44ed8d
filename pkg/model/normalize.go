package model

import (
	"fmt"
	"sort"
	"strings"
)

// NormalizeField completes a raw or partial definition using positional
// defaults for the field at index. Blank attributes are filled (label
// "Field {n}", name "field_{n}", type TEXT, id "field-{index}") and
// FieldOrder is always corrected to index. Normalizing twice yields the same
// result as normalizing once. The placeholder id only looks at index; use
// NormalizeFields to keep ids unique across a list.
func NormalizeField(field FieldDefinition, index int) FieldDefinition {
	out := field.Clone()
	if strings.TrimSpace(string(out.ID)) == "" {
		out.ID = PlaceholderID(index)
	}
	if strings.TrimSpace(out.FieldLabel) == "" {
		out.FieldLabel = DefaultLabel(index)
	}
	if strings.TrimSpace(out.FieldName) == "" {
		out.FieldName = DefaultName(index)
	}
	out.FieldType = ParseFieldType(string(out.FieldType))
	out.FieldOrder = index
	if len(out.FieldOptions) == 0 {
		out.FieldOptions = nil
	}
	if out.ValidationRules.IsZero() {
		out.ValidationRules = nil
	}
	return out
}

// NormalizeFields normalizes every field by its list position. A blank id
// whose placeholder is already held by another field gets a "-2", "-3", ...
// suffix instead.
func NormalizeFields(fields []FieldDefinition) []FieldDefinition {
	if len(fields) == 0 {
		return []FieldDefinition{}
	}
	taken := make(map[FieldID]bool, len(fields))
	for _, field := range fields {
		if id := FieldID(strings.TrimSpace(string(field.ID))); id != "" {
			taken[id] = true
		}
	}
	out := make([]FieldDefinition, len(fields))
	for idx, field := range fields {
		if strings.TrimSpace(string(field.ID)) == "" {
			field.ID = freePlaceholder(idx, taken)
		}
		out[idx] = NormalizeField(field, idx)
	}
	return out
}

func freePlaceholder(index int, taken map[FieldID]bool) FieldID {
	id := PlaceholderID(index)
	for n := 2; taken[id]; n++ {
		id = FieldID(fmt.Sprintf("%s-%d", PlaceholderID(index), n))
	}
	taken[id] = true
	return id
}

// NormalizeTemplate trims the template metadata and normalizes its fields.
// Fields keep their list position; use SortFields first when the source order
// is only carried by FieldOrder.
func NormalizeTemplate(template FormTemplate) FormTemplate {
	out := template.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Description = strings.TrimSpace(out.Description)
	out.Fields = NormalizeFields(out.Fields)
	return out
}

// SortFields returns a copy of fields ordered by FieldOrder. Ties keep their
// original relative order.
func SortFields(fields []FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FieldOrder < out[j].FieldOrder
	})
	return out
}
