package dynamicform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// UnnamedLabel stands in for answers whose field no longer exists.
const UnnamedLabel = "Unnamed"

// Row is one displayable answer of an employee record.
type Row struct {
	FieldID model.FieldID
	Label   string
	Value   string
}

// IntegrityWarning reports an answer that references a field missing from
// the employee's current template. It is informational, never an error.
type IntegrityWarning struct {
	EmployeeID int64
	FieldID    model.FieldID
	Label      string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("employee %d: field %s no longer exists on its template", w.EmployeeID, w.FieldID)
}

// Display resolves each stored answer of employee against template. Known
// fields are listed in template order with their current label; checkbox
// answers are shown as their option labels. Answers for missing fields come
// last, labelled UnnamedLabel, and each yields an IntegrityWarning.
func Display(employee model.Employee, template model.FormTemplate) ([]Row, []IntegrityWarning) {
	order := make(map[model.FieldID]int, len(template.Fields))
	for _, field := range template.Fields {
		order[field.ID] = field.FieldOrder
	}

	var (
		known    []Row
		orphaned []Row
		warnings []IntegrityWarning
	)
	for _, value := range employee.FieldValues {
		field, ok := template.Field(value.FormFieldID)
		if !ok {
			orphaned = append(orphaned, Row{FieldID: value.FormFieldID, Label: UnnamedLabel, Value: value.FieldValue})
			warnings = append(warnings, IntegrityWarning{
				EmployeeID: employee.ID,
				FieldID:    value.FormFieldID,
				Label:      UnnamedLabel,
			})
			continue
		}
		known = append(known, Row{
			FieldID: field.ID,
			Label:   model.SafeLabel(field.FieldLabel, field.FieldOrder),
			Value:   displayValue(field, value.FieldValue),
		})
	}
	sort.SliceStable(known, func(i, j int) bool {
		return order[known[i].FieldID] < order[known[j].FieldID]
	})
	return append(known, orphaned...), warnings
}

func displayValue(field model.FieldDefinition, value string) string {
	if !field.FieldType.HasOptions() {
		return value
	}
	labels := make(map[string]string, len(field.FieldOptions))
	for _, option := range field.FieldOptions {
		labels[option.Value] = option.Label
	}
	picked := []string{value}
	if field.FieldType == model.FieldTypeCheckbox {
		picked = model.DecodeChoices(value)
	}
	out := make([]string, 0, len(picked))
	for _, choice := range picked {
		if label := strings.TrimSpace(labels[choice]); label != "" {
			out = append(out, label)
			continue
		}
		out = append(out, choice)
	}
	return strings.Join(out, ", ")
}
