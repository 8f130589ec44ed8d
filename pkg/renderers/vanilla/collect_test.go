package vanilla

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
)

func TestCollect(t *testing.T) {
	fields := []model.FieldDefinition{
		{ID: "1", FieldLabel: "Name"},
		{ID: "2", FieldLabel: "Notes", FieldType: model.FieldTypeTextarea},
		{ID: "3", FieldLabel: "Benefits", FieldType: model.FieldTypeCheckbox, FieldOptions: []model.FieldOption{
			{Label: "Dental", Value: "dental"},
			{Label: "Vision", Value: "vision"},
			{Label: "Gym", Value: "gym"},
		}},
		{ID: "4", FieldLabel: "Perks", FieldType: model.FieldTypeCheckbox, FieldOptions: []model.FieldOption{{Label: "Car", Value: "car"}}},
		{FieldLabel: "No id"},
	}
	values := url.Values{
		"fields.1": {"Ada", "ignored"},
		"fields.3": {"gym", "dental", "unknown"},
	}

	got := map[model.FieldID]string{}
	err := Collect(fields, values, func(id model.FieldID, value string) error {
		got[id] = value
		return nil
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[model.FieldID]string{
		"1": "Ada",
		"3": `["dental","gym"]`,
		"4": "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_PropagatesHandlerErrors(t *testing.T) {
	fields := []model.FieldDefinition{{ID: "1"}}
	boom := errors.New("boom")
	err := Collect(fields, url.Values{"fields.1": {"x"}}, func(model.FieldID, string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
	if err := Collect(fields, nil, nil); err == nil {
		t.Fatalf("expected error without handler")
	}
}
