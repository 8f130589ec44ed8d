package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emsforms.db")
	s, err := OpenStore(context.Background(), path, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func onboardingPayload() model.TemplatePayload {
	return model.TemplatePayload{
		Name:        "Onboarding",
		Description: "New hires",
		Fields: []model.FieldPayload{
			{FieldName: "full_name", FieldLabel: "Full Name", FieldType: model.FieldTypeText, IsRequired: true, FieldOrder: 0,
				ValidationRules: &model.ValidationRules{MinLength: intPtr(2)}},
			{FieldName: "department", FieldLabel: "Department", FieldType: model.FieldTypeSelect, FieldOrder: 1,
				FieldOptions: []model.FieldOption{{Label: "HR", Value: "hr"}, {Label: "Engineering", Value: "eng"}}},
		},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTestStore(t)
	if err := Migrate(context.Background(), s.db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var versions int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&versions); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if versions != len(migrations) {
		t.Fatalf("expected %d versions, got %d", len(migrations), versions)
	}
}

func TestTemplates_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	templates := openTestStore(t).Templates()

	created, err := templates.Create(ctx, onboardingPayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := model.FormTemplate{
		ID:          1,
		Name:        "Onboarding",
		Description: "New hires",
		IsActive:    true,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
		Fields: []model.FieldDefinition{
			{ID: "1", FieldName: "full_name", FieldLabel: "Full Name", FieldType: model.FieldTypeText, IsRequired: true,
				ValidationRules: &model.ValidationRules{MinLength: intPtr(2)}},
			{ID: "2", FieldName: "department", FieldLabel: "Department", FieldType: model.FieldTypeSelect, FieldOrder: 1,
				FieldOptions: []model.FieldOption{{Label: "HR", Value: "hr"}, {Label: "Engineering", Value: "eng"}}},
		},
	}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplates_UpdateMatchesFieldsByName(t *testing.T) {
	ctx := context.Background()
	templates := openTestStore(t).Templates()
	created, err := templates.Create(ctx, onboardingPayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payload := model.TemplatePayload{
		Name: "Onboarding v2",
		Fields: []model.FieldPayload{
			{FieldName: "department", FieldLabel: "Team", FieldType: model.FieldTypeRadio, FieldOrder: 0},
			{FieldName: "start_date", FieldLabel: "Start Date", FieldType: model.FieldTypeDate, FieldOrder: 1},
		},
	}
	updated, err := templates.Update(ctx, created.ID, payload)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := make([]string, 0, len(updated.Fields))
	for _, field := range updated.Fields {
		got = append(got, string(field.ID)+":"+field.FieldLabel)
	}
	if diff := cmp.Diff([]string{"2:Team", "3:Start Date"}, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if _, err := templates.Update(ctx, 99, payload); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplates_ListAndDuplicate(t *testing.T) {
	ctx := context.Background()
	templates := openTestStore(t).Templates()
	created, _ := templates.Create(ctx, onboardingPayload())

	dup, err := templates.Duplicate(ctx, created.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.Name != "Onboarding (Copy)" || len(dup.Fields) != 2 {
		t.Fatalf("unexpected duplicate %+v", dup)
	}

	inactive := false
	list, err := templates.List(ctx, store.ListFilter{IsActive: &inactive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no inactive templates, got %d", len(list))
	}
	list, err = templates.List(ctx, store.ListFilter{Search: "COPY"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != dup.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestEmployees_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	template, err := s.Templates().Create(ctx, onboardingPayload())
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	employees := s.Employees()
	created, err := employees.Create(ctx, model.EmployeeSubmission{
		FormTemplateID: template.ID,
		FieldValues: []model.FieldValuePayload{
			{FormFieldID: 2, FieldValue: "eng"},
			{FormFieldID: 1, FieldValue: "Ada Lovelace"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := []model.EmployeeFieldValue{{FormFieldID: "2", FieldValue: "eng"}, {FormFieldID: "1", FieldValue: "Ada Lovelace"}}
	if diff := cmp.Diff(want, created.FieldValues); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	updated, err := employees.Update(ctx, created.ID, model.EmployeeSubmission{
		FormTemplateID: template.ID,
		FieldValues:    []model.FieldValuePayload{{FormFieldID: 1, FieldValue: "Grace Hopper"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if value, _ := updated.Value("1"); value != "Grace Hopper" || len(updated.FieldValues) != 1 {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := s.Templates().Delete(ctx, template.ID); err == nil {
		t.Fatalf("expected delete of an in-use template to fail")
	}
	if err := employees.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := employees.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEmployees_RejectsUnknownTemplate(t *testing.T) {
	_, err := openTestStore(t).Employees().Create(context.Background(), model.EmployeeSubmission{FormTemplateID: 5})
	var collaborator *store.CollaboratorError
	if !errors.As(err, &collaborator) || collaborator.Fields["form_template_id"] == nil {
		t.Fatalf("expected template error, got %v", err)
	}
}
