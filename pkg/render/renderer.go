package render

import (
	"context"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/widgets"
)

// ChangeFunc receives every value change a widget produces. Field renderers
// never mutate state themselves; all side effects flow through this hook.
type ChangeFunc func(id model.FieldID, value string) error

// FieldOutput is the result of rendering one field.
type FieldOutput struct {
	FieldID model.FieldID
	Widget  widgets.Widget
	// Markup holds the rendered widget for presentational renderers. Terminal
	// renderers leave it empty.
	Markup string
	// Value is the value shown by (or collected from) the widget.
	Value string
	// Error is the validation message for Value, empty when valid.
	Error string
}

// FieldRenderer turns a definition, its current value and a change hook into
// a widget plus its validation message.
type FieldRenderer interface {
	RenderField(ctx context.Context, field model.FieldDefinition, value string, onChange ChangeFunc) (FieldOutput, error)
}

// Renderer converts a dynamic form snapshot into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view FormView, options RenderOptions) ([]byte, error)
}
