package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
)

func TestFor_CoversEveryFieldType(t *testing.T) {
	want := map[model.FieldType]Kind{
		model.FieldTypeText:     KindText,
		model.FieldTypeEmail:    KindEmail,
		model.FieldTypePassword: KindPassword,
		model.FieldTypeNumber:   KindNumber,
		model.FieldTypeDate:     KindDate,
		model.FieldTypePhone:    KindTel,
		model.FieldTypeTextarea: KindTextarea,
		model.FieldTypeSelect:   KindSelect,
		model.FieldTypeCheckbox: KindCheckboxGroup,
		model.FieldTypeRadio:    KindRadioGroup,
		model.FieldTypeFile:     KindFile,
	}
	got := make(map[model.FieldType]Kind)
	for _, fieldType := range model.FieldTypes() {
		got[fieldType] = For(fieldType).Kind
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("widget kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestFor_UnknownFallsBackToText(t *testing.T) {
	if got := For("SLIDER"); got != For(model.FieldTypeText) {
		t.Fatalf("expected TEXT widget, got %+v", got)
	}
	if got := For("radio").Kind; got != KindRadioGroup {
		t.Fatalf("expected lower-case tag to resolve, got %q", got)
	}
}

func TestFor_ChoiceWidgets(t *testing.T) {
	if !For(model.FieldTypeCheckbox).Multiple {
		t.Fatalf("checkbox widget should allow multiple answers")
	}
	if For(model.FieldTypeRadio).Multiple || For(model.FieldTypeSelect).Multiple {
		t.Fatalf("radio and select are single choice")
	}
	for _, fieldType := range model.FieldTypes() {
		if For(fieldType).Choices != fieldType.HasOptions() {
			t.Errorf("%s: choices flag disagrees with HasOptions", fieldType)
		}
	}
}

func TestRegistry_OverrideTemplate(t *testing.T) {
	reg := NewRegistry()
	reg.OverrideTemplate(model.FieldTypeDate, "fields/datepicker.tmpl")
	reg.OverrideTemplate("BOGUS", "fields/bogus.tmpl")

	got := reg.Resolve(model.FieldDefinition{FieldType: model.FieldTypeDate})
	if got.Template != "fields/datepicker.tmpl" || got.Kind != KindDate {
		t.Fatalf("unexpected override result: %+v", got)
	}
	if got := reg.Resolve(model.FieldDefinition{FieldType: "BOGUS"}); got.Template != "fields/input.tmpl" {
		t.Fatalf("unknown types must not pick up overrides, got %+v", got)
	}
	if For(model.FieldTypeDate).Template != "fields/input.tmpl" {
		t.Fatalf("override leaked into the built-in table")
	}
}
