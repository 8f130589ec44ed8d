package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
)

func TestMatchTemplate(t *testing.T) {
	active, inactive := true, false
	template := model.FormTemplate{Name: "Onboarding Checklist", IsActive: true}

	cases := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{name: "empty", filter: ListFilter{}, want: true},
		{name: "case-insensitive", filter: ListFilter{Search: "  onBOARD "}, want: true},
		{name: "no match", filter: ListFilter{Search: "offboard"}, want: false},
		{name: "active", filter: ListFilter{IsActive: &active}, want: true},
		{name: "inactive", filter: ListFilter{IsActive: &inactive}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchTemplate(template, tc.filter); got != tc.want {
				t.Fatalf("MatchTemplate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDuplicatePayload(t *testing.T) {
	template := model.FormTemplate{
		ID:   4,
		Name: "Onboarding",
		Fields: []model.FieldDefinition{
			{ID: "2", FieldName: "email", FieldLabel: "Email", FieldType: model.FieldTypeEmail, FieldOrder: 1},
			{ID: "1", FieldName: "full_name", FieldLabel: "Full Name", FieldType: model.FieldTypeText, FieldOrder: 0},
		},
	}
	got := DuplicatePayload(template)
	want := model.TemplatePayload{
		Name: "Onboarding (Copy)",
		Fields: []model.FieldPayload{
			{FieldName: "full_name", FieldLabel: "Full Name", FieldType: model.FieldTypeText, FieldOrder: 0},
			{FieldName: "email", FieldLabel: "Email", FieldType: model.FieldTypeEmail, FieldOrder: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if template.Fields[0].FieldOrder != 1 {
		t.Fatalf("DuplicatePayload mutated its input")
	}
}

func TestStaticSession(t *testing.T) {
	if _, ok := StaticSession("  ").Credential(); ok {
		t.Fatalf("blank token should report no credential")
	}
	token, ok := StaticSession("abc").Credential()
	if !ok || token != "abc" {
		t.Fatalf("unexpected credential %q %v", token, ok)
	}
}

func TestAsCollaboratorError(t *testing.T) {
	if AsCollaboratorError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}

	plain := errors.New("connection refused")
	got := AsCollaboratorError(plain)
	if got.Message != "connection refused" || !errors.Is(got, plain) {
		t.Fatalf("unexpected wrap %+v", got)
	}

	inner := &CollaboratorError{Fields: map[string][]string{"name": {"", "This field is required."}}}
	wrapped := fmt.Errorf("dynamicform: submit: %w", inner)
	got = AsCollaboratorError(wrapped)
	if got != inner {
		t.Fatalf("expected the wrapped collaborator error to be returned")
	}
	if got.Message != "This field is required." {
		t.Fatalf("unexpected message %q", got.Message)
	}
}
