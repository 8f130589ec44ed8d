package designer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/store"
	"github.com/goliatone/go-emsforms/pkg/validation"
)

var (
	// ErrSaveInFlight is returned when Save is called while a previous save
	// has not completed.
	ErrSaveInFlight = errors.New("designer: save already in progress")
	// ErrClosed is returned by Save after Close.
	ErrClosed = errors.New("designer: engine closed")
)

// NameRequiredMessage is reported when saving a template without a name.
const NameRequiredMessage = "Template name is required"

// NameIssueID keys the template-name issue inside validation.Errors.
const NameIssueID model.FieldID = "name"

// Engine owns one template being authored. All methods are safe for
// concurrent use; the store call made by Save runs without holding the lock.
type Engine struct {
	mu     sync.Mutex
	store  store.TemplateStore
	logger *zap.Logger
	newID  func() model.FieldID

	template model.FormTemplate
	// revision counts local mutations; generation counts Load calls. Both
	// decide whether a finished save may replace the in-memory template.
	revision   uint64
	generation uint64

	dragging model.FieldID
	saving   bool
	closed   bool
	lastErr  string
}

// New constructs an Engine editing a new, empty template.
func New(templates store.TemplateStore, opts ...Option) (*Engine, error) {
	if templates == nil {
		return nil, errors.New("designer: template store is required")
	}
	e := &Engine{
		store:    templates,
		logger:   zap.NewNop(),
		newID:    defaultIDGenerator,
		template: model.FormTemplate{IsActive: true, Fields: []model.FieldDefinition{}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Load replaces the edited template. Fields are sorted by their stored order
// and normalized.
func (e *Engine) Load(template model.FormTemplate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sorted := template.Clone()
	sorted.Fields = model.SortFields(sorted.Fields)
	e.template = model.NormalizeTemplate(sorted)
	e.generation++
	e.revision++
	e.dragging = ""
	e.lastErr = ""
}

// Template returns a copy of the edited template.
func (e *Engine) Template() model.FormTemplate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.template.Clone()
}

// Fields returns a copy of the edited fields in list order.
func (e *Engine) Fields() []model.FieldDefinition {
	return e.Template().Fields
}

// SetName sets the template name. Trimming happens at save time.
func (e *Engine) SetName(name string) {
	e.mutate(func(t *model.FormTemplate) bool {
		t.Name = name
		return true
	})
}

// SetDescription sets the template description.
func (e *Engine) SetDescription(description string) {
	e.mutate(func(t *model.FormTemplate) bool {
		t.Description = description
		return true
	})
}

// AddField appends a TEXT field with positional defaults and a placeholder
// id, and returns it.
func (e *Engine) AddField() model.FieldDefinition {
	var added model.FieldDefinition
	e.mutate(func(t *model.FormTemplate) bool {
		index := len(t.Fields)
		added = model.FieldDefinition{
			ID:         e.uniqueID(t.Fields),
			FieldName:  model.DefaultName(index),
			FieldLabel: model.DefaultLabel(index),
			FieldType:  model.FieldTypeText,
			FieldOrder: index,
		}
		t.Fields = append(t.Fields, added)
		return true
	})
	return added.Clone()
}

// RemoveField deletes the field at index and re-stamps the order of the
// remaining fields.
func (e *Engine) RemoveField(index int) bool {
	return e.mutate(func(t *model.FormTemplate) bool {
		if !inRange(t.Fields, index) {
			return false
		}
		if t.Fields[index].ID == e.dragging {
			e.dragging = ""
		}
		t.Fields = append(t.Fields[:index], t.Fields[index+1:]...)
		restamp(t.Fields)
		return true
	})
}

// Reorder moves the field at from to position to. Other fields keep their
// relative order and every FieldOrder is recomputed from list position.
// Out-of-range indexes and from == to are no-ops reported as false.
func (e *Engine) Reorder(from, to int) bool {
	return e.mutate(func(t *model.FormTemplate) bool {
		return move(t.Fields, from, to)
	})
}

// BeginDrag marks the field with id as the drag source.
func (e *Engine) BeginDrag(id model.FieldID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if indexOf(e.template.Fields, id) < 0 {
		return false
	}
	e.dragging = id
	return true
}

// Drop ends the drag over the field with targetID, moving the source to the
// target's position. Dropping on the source itself, or without an active
// drag, changes nothing.
func (e *Engine) Drop(targetID model.FieldID) bool {
	return e.mutate(func(t *model.FormTemplate) bool {
		source := e.dragging
		e.dragging = ""
		if source == "" || source == targetID {
			return false
		}
		return move(t.Fields, indexOf(t.Fields, source), indexOf(t.Fields, targetID))
	})
}

// CancelDrag abandons the current drag.
func (e *Engine) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragging = ""
}

// Dragging returns the current drag source, if any.
func (e *Engine) Dragging() (model.FieldID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dragging, e.dragging != ""
}

// UpdateLabel sets the label of the field at index. The field name is
// derived from it at save time.
func (e *Engine) UpdateLabel(index int, label string) bool {
	return e.updateField(index, func(f *model.FieldDefinition) {
		f.FieldLabel = label
	})
}

// UpdateType changes the type of the field at index. Label, requiredness
// and options are kept so switching back restores the previous setup.
func (e *Engine) UpdateType(index int, fieldType model.FieldType) bool {
	resolved := model.ParseFieldType(string(fieldType))
	if resolved != fieldType {
		e.logger.Debug("unknown field type falls back to TEXT", zap.String("type", string(fieldType)))
	}
	return e.updateField(index, func(f *model.FieldDefinition) {
		f.FieldType = resolved
	})
}

// UpdateRequired toggles requiredness of the field at index.
func (e *Engine) UpdateRequired(index int, required bool) bool {
	return e.updateField(index, func(f *model.FieldDefinition) {
		f.IsRequired = required
	})
}

// UpdateOptions replaces the choices of the field at index.
func (e *Engine) UpdateOptions(index int, options []model.FieldOption) bool {
	return e.updateField(index, func(f *model.FieldDefinition) {
		if len(options) == 0 {
			f.FieldOptions = nil
			return
		}
		f.FieldOptions = append([]model.FieldOption(nil), options...)
	})
}

// UpdateValidation replaces the rules of the field at index.
func (e *Engine) UpdateValidation(index int, rules *model.ValidationRules) bool {
	return e.updateField(index, func(f *model.FieldDefinition) {
		if rules.IsZero() {
			f.ValidationRules = nil
			return
		}
		f.ValidationRules = rules.Clone()
	})
}

// Payload returns the wire payload Save would send for the current state.
func (e *Engine) Payload() model.TemplatePayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Finalize(e.template).Payload()
}

// Saving reports whether a save is in flight.
func (e *Engine) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Close detaches the engine. Saves that complete afterwards are not applied.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Save finalizes the template and persists it, creating it when it has no id
// and updating it otherwise. On success the stored record replaces the
// in-memory template unless the template was edited while the call was in
// flight, in which case only the assigned id is kept. On failure the
// in-memory template is left untouched.
func (e *Engine) Save(ctx context.Context) (model.FormTemplate, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return model.FormTemplate{}, ErrClosed
	}
	if e.saving {
		e.mu.Unlock()
		e.logger.Debug("ignoring save while another is in flight")
		return model.FormTemplate{}, ErrSaveInFlight
	}
	final := Finalize(e.template)
	if final.Name == "" {
		e.lastErr = NameRequiredMessage
		e.mu.Unlock()
		return model.FormTemplate{}, validation.Errors{{FieldID: NameIssueID, Message: NameRequiredMessage}}
	}
	e.saving = true
	revision, generation := e.revision, e.generation
	e.mu.Unlock()

	payload := final.Payload()
	e.logger.Info("saving template",
		zap.Int64("template_id", final.ID),
		zap.String("name", final.Name),
		zap.Int("fields", len(payload.Fields)),
	)

	var (
		saved model.FormTemplate
		err   error
	)
	if final.Persisted() {
		saved, err = e.store.Update(ctx, final.ID, payload)
	} else {
		saved, err = e.store.Create(ctx, payload)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false

	if e.closed || e.generation != generation {
		e.logger.Debug("discarding save response for a detached template", zap.Int64("template_id", saved.ID))
		if err != nil {
			return model.FormTemplate{}, fmt.Errorf("designer: save: %w", err)
		}
		return saved.Clone(), nil
	}
	if err != nil {
		collaborator := store.AsCollaboratorError(err)
		e.lastErr = collaborator.Message
		e.logger.Warn("template save failed", zap.String("name", final.Name), zap.Error(err))
		return model.FormTemplate{}, fmt.Errorf("designer: save: %w", collaborator)
	}

	e.lastErr = ""
	if e.revision == revision {
		sorted := saved.Clone()
		sorted.Fields = model.SortFields(sorted.Fields)
		e.template = model.NormalizeTemplate(sorted)
		e.revision++
	} else {
		e.logger.Debug("template edited during save; keeping local edits", zap.Int64("template_id", saved.ID))
		if !e.template.Persisted() {
			e.template.ID = saved.ID
		}
	}
	e.logger.Info("template saved", zap.Int64("template_id", saved.ID))
	return saved.Clone(), nil
}

// Preview renders every field in list order with an empty value.
func (e *Engine) Preview(ctx context.Context, renderer render.FieldRenderer) ([]render.FieldOutput, error) {
	if renderer == nil {
		return nil, errors.New("designer: preview requires a field renderer")
	}
	fields := e.Fields()
	out := make([]render.FieldOutput, 0, len(fields))
	for _, field := range fields {
		output, err := renderer.RenderField(ctx, field, "", nil)
		if err != nil {
			return nil, fmt.Errorf("designer: preview field %q: %w", field.ID, err)
		}
		out = append(out, output)
	}
	return out, nil
}

// View returns a render snapshot of the designer.
func (e *Engine) View() render.DesignerView {
	e.mu.Lock()
	defer e.mu.Unlock()

	template := e.template.Clone()
	return render.DesignerView{
		TemplateID:  template.ID,
		Name:        template.Name,
		Description: template.Description,
		Fields:      template.Fields,
		FieldTypes:  model.FieldTypes(),
		Saving:      e.saving,
		Error:       e.lastErr,
	}
}

// Finalize returns the template as it is persisted: name and description
// trimmed, blank labels replaced by their positional default, field names
// derived from labels, order re-stamped from list position, and options
// dropped from types that do not use them.
func Finalize(template model.FormTemplate) model.FormTemplate {
	out := template.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Description = strings.TrimSpace(out.Description)
	if out.Fields == nil {
		out.Fields = []model.FieldDefinition{}
	}
	for idx := range out.Fields {
		field := &out.Fields[idx]
		field.FieldLabel = model.SafeLabel(field.FieldLabel, idx)
		field.FieldName = model.FieldNameFromLabel(field.FieldLabel)
		field.FieldType = model.ParseFieldType(string(field.FieldType))
		field.FieldOrder = idx
		if !field.FieldType.HasOptions() || len(field.FieldOptions) == 0 {
			field.FieldOptions = nil
		}
		if field.ValidationRules.IsZero() {
			field.ValidationRules = nil
		}
	}
	return out
}

func (e *Engine) mutate(fn func(*model.FormTemplate) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn(&e.template) {
		return false
	}
	e.revision++
	return true
}

func (e *Engine) updateField(index int, fn func(*model.FieldDefinition)) bool {
	return e.mutate(func(t *model.FormTemplate) bool {
		if !inRange(t.Fields, index) {
			return false
		}
		fn(&t.Fields[index])
		return true
	})
}

func (e *Engine) uniqueID(fields []model.FieldDefinition) model.FieldID {
	for {
		id := e.newID()
		if id != "" && indexOf(fields, id) < 0 {
			return id
		}
	}
}

func move(fields []model.FieldDefinition, from, to int) bool {
	if !inRange(fields, from) || !inRange(fields, to) || from == to {
		return false
	}
	moved := fields[from]
	if from < to {
		copy(fields[from:to], fields[from+1:to+1])
	} else {
		copy(fields[to+1:from+1], fields[to:from])
	}
	fields[to] = moved
	restamp(fields)
	return true
}

func restamp(fields []model.FieldDefinition) {
	for idx := range fields {
		fields[idx].FieldOrder = idx
	}
}

func inRange(fields []model.FieldDefinition, index int) bool {
	return index >= 0 && index < len(fields)
}

func indexOf(fields []model.FieldDefinition, id model.FieldID) int {
	if id == "" {
		return -1
	}
	for idx, field := range fields {
		if field.ID == id {
			return idx
		}
	}
	return -1
}
