package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newTestRenderer(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderField_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "Ada"}}
	r := newTestRenderer(t, driver)

	var changes []string
	field := model.FieldDefinition{ID: "10", FieldLabel: "Full Name", IsRequired: true}
	out, err := r.RenderField(context.Background(), field, "", func(id model.FieldID, value string) error {
		changes = append(changes, string(id)+"="+value)
		return nil
	})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if out.Value != "Ada" || out.Error != "" {
		t.Fatalf("unexpected output %+v", out)
	}
	if diff := cmp.Diff([]string{"10=Ada"}, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Full Name is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderField_RepromptShowsMessageOnce(t *testing.T) {
	driver := &stubDriver{inputs: []string{"abc", "1e3"}}
	r := newTestRenderer(t, driver)

	field := model.FieldDefinition{ID: "22", FieldLabel: "Rate", FieldType: model.FieldTypeNumber}
	out, err := r.RenderField(context.Background(), field, "", nil)
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if out.Value != "1e3" {
		t.Fatalf("unexpected output %+v", out)
	}
	if diff := cmp.Diff([]string{"Rate must be a number"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderField_SelectHasBlankOption(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{2}}
	r := newTestRenderer(t, driver)

	field := model.FieldDefinition{
		ID:           "4",
		FieldLabel:   "Department",
		FieldType:    model.FieldTypeSelect,
		FieldOptions: []model.FieldOption{{Label: "HR", Value: "hr"}, {Label: "", Value: "eng"}},
	}
	out, err := r.RenderField(context.Background(), field, "hr", nil)
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if out.Value != "eng" {
		t.Fatalf("expected eng, got %q", out.Value)
	}
	cfg := driver.selectCfgs[0]
	if diff := cmp.Diff([]string{"Select an option", "HR", "eng"}, cfg.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if cfg.DefaultIndex != 1 {
		t.Fatalf("expected current value preselected, got %d", cfg.DefaultIndex)
	}
}

func TestRenderField_CheckboxAggregatesInOptionOrder(t *testing.T) {
	driver := &stubDriver{multiIdx: [][]int{{2, 0}}}
	r := newTestRenderer(t, driver)

	field := model.FieldDefinition{
		ID:         "9",
		FieldLabel: "Benefits",
		FieldType:  model.FieldTypeCheckbox,
		FieldOptions: []model.FieldOption{
			{Label: "Dental", Value: "dental"},
			{Label: "Vision", Value: "vision"},
			{Label: "Gym", Value: "gym"},
		},
	}
	out, err := r.RenderField(context.Background(), field, "", nil)
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if out.Value != `["dental","gym"]` {
		t.Fatalf("unexpected value %q", out.Value)
	}
}

func TestRenderField_ChoiceWithoutOptionsDoesNotLoop(t *testing.T) {
	driver := &stubDriver{}
	r := newTestRenderer(t, driver)

	field := model.FieldDefinition{ID: "3", FieldLabel: "Shift", FieldType: model.FieldTypeRadio, IsRequired: true}
	out, err := r.RenderField(context.Background(), field, "", nil)
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if out.Error != "Shift is required" {
		t.Fatalf("expected required error, got %q", out.Error)
	}
	if diff := cmp.Diff([]string{"Shift: no options defined"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SubmissionJSON(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada Lovelace", ""}, passwords: []string{"s3cret"}}
	r := newTestRenderer(t, driver)

	view := render.FormView{
		SelectedTemplateID: 3,
		Fields: []render.FieldView{
			{Field: model.FieldDefinition{ID: "10", FieldLabel: "Full Name", IsRequired: true}},
			{Field: model.FieldDefinition{ID: "11", FieldLabel: "Nickname", FieldOrder: 1}},
			{Field: model.FieldDefinition{ID: "12", FieldLabel: "PIN", FieldType: model.FieldTypePassword, FieldOrder: 2}},
		},
	}
	out, err := r.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `{"form_template_id":3,"field_values":[{"form_field_id":10,"field_value":"Ada Lovelace"},{"form_field_id":12,"field_value":"s3cret"}]}`
	if string(out) != want {
		t.Fatalf("unexpected output\nwant: %s\n got: %s", want, out)
	}
}

func TestRender_PrettyText(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada"}}
	r := newTestRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText))

	view := render.FormView{
		SelectedTemplateID: 3,
		Fields:             []render.FieldView{{Field: model.FieldDefinition{ID: "10", FieldLabel: "Full Name"}}},
	}
	out, err := r.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "Full Name: Ada\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if r.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_RequiresTemplate(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{})
	if _, err := r.Render(context.Background(), render.FormView{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error without a selected template")
	}
}

type fakeForm struct {
	templates map[int64][]model.FieldDefinition
	selected  int64
	values    map[model.FieldID]string
}

func (f *fakeForm) View() render.FormView {
	view := render.FormView{SelectedTemplateID: f.selected, SubmitLabel: "Create Employee"}
	for id := range f.templates {
		view.Templates = append(view.Templates, render.TemplateChoice{ID: id, Name: "Template"})
	}
	for _, field := range f.templates[f.selected] {
		view.Fields = append(view.Fields, render.FieldView{Field: field, Value: f.values[field.ID]})
	}
	return view
}

func (f *fakeForm) SelectTemplate(id int64) error {
	f.selected = id
	f.values = map[model.FieldID]string{}
	return nil
}

func (f *fakeForm) SetValue(id model.FieldID, value string) error {
	f.values[id] = value
	return nil
}

func TestFill_SelectsTemplateAndFeedsValues(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"Ada"}, confirm: []bool{true}}
	r := newTestRenderer(t, driver)
	form := &fakeForm{templates: map[int64][]model.FieldDefinition{
		7: {{ID: "10", FieldLabel: "Full Name", IsRequired: true}},
	}}

	ok, err := r.Fill(context.Background(), form)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !ok {
		t.Fatalf("expected confirmation")
	}
	if form.selected != 7 {
		t.Fatalf("expected template 7 selected, got %d", form.selected)
	}
	if diff := cmp.Diff(map[model.FieldID]string{"10": "Ada"}, form.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_NoTemplates(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{})
	_, err := r.Fill(context.Background(), &fakeForm{})
	if !errors.Is(err, ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}
}
