package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
)

func intPtr(v int) *int { return &v }

func TestField_Required(t *testing.T) {
	v := New()
	field := model.FieldDefinition{ID: "4", FieldLabel: "Department", FieldType: model.FieldTypeSelect, IsRequired: true}

	got := v.Field(field, "")
	want := &Issue{FieldID: "4", Message: "Department is required"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue mismatch (-want +got):\n%s", diff)
	}
	if issue := v.Field(field, "   "); issue == nil {
		t.Fatalf("whitespace-only value should count as empty")
	}
	if issue := v.Field(field, "hr"); issue != nil {
		t.Fatalf("expected no issue, got %+v", issue)
	}
}

func TestField_CheckboxRequiredIsOptIn(t *testing.T) {
	field := model.FieldDefinition{ID: "9", FieldLabel: "Benefits", FieldType: model.FieldTypeCheckbox, IsRequired: true}

	if issue := New().Field(field, ""); issue != nil {
		t.Fatalf("default validator should not enforce checkbox required, got %+v", issue)
	}

	strict := New(WithCheckboxRequired(true))
	for _, value := range []string{"", "[]"} {
		if issue := strict.Field(field, value); issue == nil {
			t.Fatalf("value %q: expected required issue", value)
		}
	}
	if issue := strict.Field(field, `["dental"]`); issue != nil {
		t.Fatalf("expected no issue, got %+v", issue)
	}
}

func TestField_Rules(t *testing.T) {
	v := New()
	field := model.FieldDefinition{
		ID:         "2",
		FieldLabel: "Code",
		FieldType:  model.FieldTypeText,
		ValidationRules: &model.ValidationRules{
			MinLength: intPtr(2),
			MaxLength: intPtr(4),
			Pattern:   `^[A-Z]+$`,
		},
	}

	cases := []struct {
		value string
		want  string
	}{
		{value: "", want: ""},
		{value: "A", want: "Code must be at least 2 characters"},
		{value: "ABCDE", want: "Code must be at most 4 characters"},
		{value: "ab", want: "Code has an invalid format"},
		{value: "ÄB", want: "Code has an invalid format"},
		{value: "ABC", want: ""},
	}
	for _, tc := range cases {
		got := ""
		if issue := v.Field(field, tc.value); issue != nil {
			got = issue.Message
		}
		if got != tc.want {
			t.Errorf("value %q: got %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestField_InvalidPatternIgnored(t *testing.T) {
	v := New()
	field := model.FieldDefinition{ID: "1", FieldLabel: "Name", ValidationRules: &model.ValidationRules{Pattern: "(["}}
	if issue := v.Field(field, "anything"); issue != nil {
		t.Fatalf("invalid pattern should be skipped, got %+v", issue)
	}
}

func TestField_Formats(t *testing.T) {
	v := New()
	cases := []struct {
		fieldType model.FieldType
		value     string
		want      string
	}{
		{fieldType: model.FieldTypeEmail, value: "ada@example.com"},
		{fieldType: model.FieldTypeEmail, value: "ada", want: "X must be a valid email address"},
		{fieldType: model.FieldTypeNumber, value: "-12.5"},
		{fieldType: model.FieldTypeNumber, value: "twelve", want: "X must be a number"},
		{fieldType: model.FieldTypeNumber, value: "1e3"},
		{fieldType: model.FieldTypeNumber, value: "2.5E-2"},
		{fieldType: model.FieldTypeNumber, value: " 42 "},
		{fieldType: model.FieldTypeNumber, value: "NaN", want: "X must be a number"},
		{fieldType: model.FieldTypeNumber, value: "Inf", want: "X must be a number"},
		{fieldType: model.FieldTypeNumber, value: "1e400", want: "X must be a number"},
		{fieldType: model.FieldTypeDate, value: "2024-02-29"},
		{fieldType: model.FieldTypeDate, value: "29/02/2024", want: "X must be a date (YYYY-MM-DD)"},
		{fieldType: model.FieldTypePhone, value: "not checked"},
	}
	for _, tc := range cases {
		field := model.FieldDefinition{ID: "1", FieldLabel: "X", FieldType: tc.fieldType}
		got := ""
		if issue := v.Field(field, tc.value); issue != nil {
			got = issue.Message
		}
		if got != tc.want {
			t.Errorf("%s %q: got %q, want %q", tc.fieldType, tc.value, got, tc.want)
		}
	}
}

func TestForm_AggregatesInFieldOrder(t *testing.T) {
	v := New()
	fields := []model.FieldDefinition{
		{ID: "1", FieldLabel: "Name", IsRequired: true},
		{ID: "2", FieldLabel: "Nickname"},
		{ID: "3", FieldLabel: "Email", FieldType: model.FieldTypeEmail, IsRequired: true},
	}
	got := v.Form(fields, map[model.FieldID]string{"3": "nope"})
	want := Errors{
		{FieldID: "1", Message: "Name is required"},
		{FieldID: "3", Message: "Email must be a valid email address"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.FieldID{"1", "3"}, got.FieldIDs()); diff != "" {
		t.Fatalf("field ids mismatch (-want +got):\n%s", diff)
	}

	if issues := v.Form(fields, map[model.FieldID]string{"1": "Ada", "3": "ada@example.com"}); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}
