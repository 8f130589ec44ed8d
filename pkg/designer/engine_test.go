package designer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/store"
	"github.com/goliatone/go-emsforms/pkg/validation"
)

// stubStore records payloads and answers with a scripted result. When gate
// is set, calls block until it is closed.
type stubStore struct {
	store.TemplateStore
	created []model.TemplatePayload
	updated []model.TemplatePayload
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubStore) wait() {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
}

func (s *stubStore) Create(_ context.Context, payload model.TemplatePayload) (model.FormTemplate, error) {
	s.wait()
	s.created = append(s.created, payload)
	if s.err != nil {
		return model.FormTemplate{}, s.err
	}
	return persisted(41, payload), nil
}

func (s *stubStore) Update(_ context.Context, id int64, payload model.TemplatePayload) (model.FormTemplate, error) {
	s.wait()
	s.updated = append(s.updated, payload)
	if s.err != nil {
		return model.FormTemplate{}, s.err
	}
	return persisted(id, payload), nil
}

func persisted(id int64, payload model.TemplatePayload) model.FormTemplate {
	template := payload.Template()
	template.ID = id
	for idx := range template.Fields {
		template.Fields[idx].ID = model.FieldIDFromInt(int64(100 + idx))
	}
	return template
}

func newEngine(t *testing.T, s store.TemplateStore) *Engine {
	t.Helper()
	counter := 0
	engine, err := New(s, WithIDGenerator(func() model.FieldID {
		counter++
		return model.FieldID(fmt.Sprintf("new-%d", counter))
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func labels(fields []model.FieldDefinition) []string {
	out := make([]string, len(fields))
	for idx, field := range fields {
		out[idx] = field.FieldLabel
	}
	return out
}

func TestAddField_Defaults(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	engine.AddField()
	added := engine.AddField()

	want := model.FieldDefinition{
		ID:         "new-2",
		FieldName:  "field_2",
		FieldLabel: "Field 2",
		FieldType:  model.FieldTypeText,
		FieldOrder: 1,
	}
	if diff := cmp.Diff(want, added); diff != "" {
		t.Fatalf("added field mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error without a store")
	}
}

func TestReorder_ThereAndBackRestoresOrder(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	for i := 0; i < 5; i++ {
		engine.AddField()
	}
	original := engine.Fields()

	for from := 0; from < 5; from++ {
		for to := 0; to < 5; to++ {
			if from == to {
				if engine.Reorder(from, to) {
					t.Fatalf("reorder %d->%d should be a no-op", from, to)
				}
				continue
			}
			if !engine.Reorder(from, to) || !engine.Reorder(to, from) {
				t.Fatalf("reorder %d<->%d failed", from, to)
			}
			if diff := cmp.Diff(original, engine.Fields()); diff != "" {
				t.Fatalf("order not restored for %d<->%d (-want +got):\n%s", from, to, diff)
			}
		}
	}
}

func TestReorder_PreservesRelativeOrder(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	for i := 0; i < 4; i++ {
		engine.AddField()
	}
	engine.Reorder(0, 2)

	if diff := cmp.Diff([]string{"Field 2", "Field 3", "Field 1", "Field 4"}, labels(engine.Fields())); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	for idx, field := range engine.Fields() {
		if field.FieldOrder != idx {
			t.Fatalf("field %d has order %d", idx, field.FieldOrder)
		}
	}
	if engine.Reorder(-1, 2) || engine.Reorder(0, 4) {
		t.Fatalf("out-of-range reorder should be rejected")
	}
}

func TestDragAndDrop(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	for i := 0; i < 3; i++ {
		engine.AddField()
	}

	if engine.BeginDrag("missing") {
		t.Fatalf("dragging an unknown id should fail")
	}
	engine.BeginDrag("new-1")
	if engine.Drop("new-1") {
		t.Fatalf("dropping on the source should be a no-op")
	}
	if _, ok := engine.Dragging(); ok {
		t.Fatalf("drop should end the drag")
	}

	engine.BeginDrag("new-3")
	if !engine.Drop("new-1") {
		t.Fatalf("expected the drop to move the field")
	}
	if diff := cmp.Diff([]string{"Field 3", "Field 1", "Field 2"}, labels(engine.Fields())); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	engine.BeginDrag("new-2")
	engine.CancelDrag()
	if engine.Drop("new-3") {
		t.Fatalf("drop after cancel should be a no-op")
	}
}

func TestUpdateType_KeepsLabel(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	engine.AddField()
	engine.UpdateLabel(0, "Department")
	engine.UpdateOptions(0, []model.FieldOption{{Label: "HR", Value: "hr"}})
	engine.UpdateType(0, model.FieldTypeSelect)
	engine.UpdateType(0, "slider")

	field := engine.Fields()[0]
	if field.FieldLabel != "Department" || field.FieldType != model.FieldTypeText {
		t.Fatalf("unexpected field %+v", field)
	}
	if len(field.FieldOptions) != 1 {
		t.Fatalf("options should survive a type change")
	}
	if engine.UpdateLabel(3, "x") {
		t.Fatalf("out-of-range update should report false")
	}
}

func TestRemoveField_Restamps(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	for i := 0; i < 3; i++ {
		engine.AddField()
	}
	if !engine.RemoveField(0) {
		t.Fatalf("remove failed")
	}
	fields := engine.Fields()
	if len(fields) != 2 || fields[0].FieldOrder != 0 || fields[1].FieldOrder != 1 {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestSave_OnboardingPayload(t *testing.T) {
	stub := &stubStore{}
	engine := newEngine(t, stub)
	engine.SetName("  Onboarding ")
	engine.AddField()
	engine.UpdateLabel(0, "Full Name")
	engine.UpdateRequired(0, true)

	saved, err := engine.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != 41 {
		t.Fatalf("expected created template id, got %d", saved.ID)
	}

	raw, err := json.Marshal(stub.created[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Onboarding","fields":[{"field_name":"full_name","field_label":"Full Name","field_type":"TEXT","is_required":true,"field_order":0,"field_options":null,"validation_rules":null}]}`
	if string(raw) != want {
		t.Fatalf("payload mismatch\nwant: %s\n got: %s", want, raw)
	}

	template := engine.Template()
	if template.ID != 41 || template.Fields[0].ID != "100" {
		t.Fatalf("saved record should replace the local template, got %+v", template)
	}

	if _, err := engine.Save(context.Background()); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(stub.updated) != 1 {
		t.Fatalf("expected the second save to update, got %d updates", len(stub.updated))
	}
}

func TestSave_EmptyLabelUsesPositionalDefault(t *testing.T) {
	stub := &stubStore{}
	engine := newEngine(t, stub)
	engine.SetName("Blank labels")
	engine.AddField()
	engine.AddField()
	engine.UpdateLabel(1, "   ")

	if _, err := engine.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	field := stub.created[0].Fields[1]
	if field.FieldLabel != "Field 2" || field.FieldName != "field_2" {
		t.Fatalf("unexpected field %+v", field)
	}
}

func TestSave_OrderIsContiguousAfterRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		stub := &stubStore{}
		engine := newEngine(t, stub)
		engine.SetName("Random")
		for step := 0; step < 30; step++ {
			count := len(engine.Fields())
			switch op := rng.Intn(5); {
			case op == 0 || count == 0:
				engine.AddField()
			case op == 1:
				engine.Reorder(rng.Intn(count), rng.Intn(count))
			case op == 2:
				engine.UpdateLabel(rng.Intn(count), fmt.Sprintf(" Label %d ", rng.Intn(100)))
			case op == 3:
				types := model.FieldTypes()
				engine.UpdateType(rng.Intn(count), types[rng.Intn(len(types))])
			default:
				engine.UpdateLabel(rng.Intn(count), "")
			}
		}
		want := labels(Finalize(engine.Template()).Fields)

		if _, err := engine.Save(context.Background()); err != nil {
			t.Fatalf("round %d: save: %v", round, err)
		}
		payload := stub.created[0]
		got := make([]string, len(payload.Fields))
		for idx, field := range payload.Fields {
			if field.FieldOrder != idx {
				t.Fatalf("round %d: field %d has order %d", round, idx, field.FieldOrder)
			}
			if field.FieldName == "" {
				t.Fatalf("round %d: field %d has an empty name", round, idx)
			}
			got[idx] = field.FieldLabel
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round %d: render order mismatch (-want +got):\n%s", round, diff)
		}
	}
}

func TestSave_RequiresName(t *testing.T) {
	stub := &stubStore{}
	engine := newEngine(t, stub)
	engine.SetName("   ")

	_, err := engine.Save(context.Background())
	var issues validation.Errors
	if !errors.As(err, &issues) || !issues.Has(NameIssueID) {
		t.Fatalf("expected a name issue, got %v", err)
	}
	if len(stub.created) != 0 {
		t.Fatalf("store should not be called")
	}
	if engine.View().Error != NameRequiredMessage {
		t.Fatalf("view should surface the message")
	}
}

func TestSave_FailureLeavesStateUnchanged(t *testing.T) {
	stub := &stubStore{err: &store.CollaboratorError{Message: "Server error. Please try again later."}}
	engine := newEngine(t, stub)
	engine.SetName("Onboarding")
	engine.AddField()
	engine.UpdateLabel(0, "Full Name ")
	before := engine.Template()

	_, err := engine.Save(context.Background())
	var collaborator *store.CollaboratorError
	if !errors.As(err, &collaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if diff := cmp.Diff(before, engine.Template()); diff != "" {
		t.Fatalf("state changed after failed save (-before +after):\n%s", diff)
	}
	if engine.View().Error != "Server error. Please try again later." {
		t.Fatalf("unexpected view error %q", engine.View().Error)
	}

	stub.err = nil
	if _, err := engine.Save(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if engine.View().Error != "" {
		t.Fatalf("error should clear after a successful retry")
	}
}

func TestSave_SecondSaveWhileInFlight(t *testing.T) {
	stub := &stubStore{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	engine := newEngine(t, stub)
	engine.SetName("Onboarding")

	done := make(chan error, 1)
	go func() {
		_, err := engine.Save(context.Background())
		done <- err
	}()
	<-stub.entered

	if !engine.Saving() || !engine.View().Saving {
		t.Fatalf("engine should report the save in flight")
	}
	if _, err := engine.Save(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}

	close(stub.gate)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(stub.created) != 1 {
		t.Fatalf("expected one store call, got %d", len(stub.created))
	}
}

func TestSave_EditsDuringFlightAreKept(t *testing.T) {
	stub := &stubStore{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	engine := newEngine(t, stub)
	engine.SetName("Onboarding")
	engine.AddField()

	done := make(chan error, 1)
	go func() {
		_, err := engine.Save(context.Background())
		done <- err
	}()
	<-stub.entered
	engine.UpdateLabel(0, "Edited")
	close(stub.gate)
	if err := <-done; err != nil {
		t.Fatalf("save: %v", err)
	}

	template := engine.Template()
	if template.ID != 41 || template.Fields[0].FieldLabel != "Edited" {
		t.Fatalf("expected id applied and local edit kept, got %+v", template)
	}
}

func TestSave_ClosedMidFlightIsNotApplied(t *testing.T) {
	stub := &stubStore{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	engine := newEngine(t, stub)
	engine.SetName("Onboarding")

	done := make(chan error, 1)
	go func() {
		_, err := engine.Save(context.Background())
		done <- err
	}()
	<-stub.entered
	engine.Close()
	close(stub.gate)
	<-done

	if engine.Template().ID != 0 {
		t.Fatalf("response applied after close")
	}
	if _, err := engine.Save(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLoad_NormalizesAndSorts(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	engine.Load(model.FormTemplate{
		ID:   9,
		Name: " Contractors ",
		Fields: []model.FieldDefinition{
			{ID: "2", FieldLabel: "Rate", FieldType: "number", FieldOrder: 4},
			{ID: "1", FieldLabel: "Name", FieldOrder: 1},
		},
	})
	template := engine.Template()
	if template.Name != "Contractors" || template.Fields[0].ID != "1" || template.Fields[1].FieldOrder != 1 {
		t.Fatalf("unexpected template %+v", template)
	}
	if template.Fields[1].FieldType != model.FieldTypeNumber {
		t.Fatalf("type not parsed: %q", template.Fields[1].FieldType)
	}
}

type recordingRenderer struct {
	values []string
}

func (r *recordingRenderer) RenderField(_ context.Context, field model.FieldDefinition, value string, _ render.ChangeFunc) (render.FieldOutput, error) {
	r.values = append(r.values, value)
	return render.FieldOutput{FieldID: field.ID, Markup: field.FieldLabel}, nil
}

func TestPreview_RendersFieldsInOrder(t *testing.T) {
	engine := newEngine(t, &stubStore{})
	engine.AddField()
	engine.AddField()
	engine.Reorder(1, 0)

	renderer := &recordingRenderer{}
	outputs, err := engine.Preview(context.Background(), renderer)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	got := []string{outputs[0].Markup, outputs[1].Markup}
	if diff := cmp.Diff([]string{"Field 2", "Field 1"}, got); diff != "" {
		t.Fatalf("preview order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", ""}, renderer.values); diff != "" {
		t.Fatalf("preview should render empty values (-want +got):\n%s", diff)
	}
}
