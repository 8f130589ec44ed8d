// Package emsforms is the entry point for building employee form templates
// and filling employee records from them.
//
// Templates are authored with a Designer and persisted through a
// store.TemplateStore; employees are collected with a DynamicForm and
// persisted through a store.EmployeeStore. Both engines render through the
// HTML renderer returned by NewHTMLRenderer or the terminal renderer in
// pkg/renderers/tui.
package emsforms

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-emsforms/pkg/designer"
	"github.com/goliatone/go-emsforms/pkg/dynamicform"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-emsforms/pkg/store"
)

// RenderOptions describes per-request overrides that renderers use to surface
// server-side validation errors and hidden inputs.
type RenderOptions = render.RenderOptions

// Designer aliases the template authoring engine.
type Designer = designer.Engine

// DynamicForm aliases the employee data-entry engine.
type DynamicForm = dynamicform.Engine

// NewDesigner constructs a designer editing a new template.
func NewDesigner(templates store.TemplateStore, options ...designer.Option) (*Designer, error) {
	return designer.New(templates, options...)
}

// NewDynamicForm lists the active templates and constructs a data-entry form
// over them.
func NewDynamicForm(ctx context.Context, templates store.TemplateStore, employees store.EmployeeStore, options ...dynamicform.Option) (*DynamicForm, error) {
	return dynamicform.Open(ctx, templates, employees, options...)
}

// NewHTMLRenderer constructs the built-in HTML renderer.
func NewHTMLRenderer(options ...vanilla.Option) (*vanilla.Renderer, error) {
	return vanilla.New(options...)
}

// NewRendererRegistry returns a registry holding the given renderers.
func NewRendererRegistry(renderers ...render.Renderer) (*render.Registry, error) {
	registry := render.NewRegistry()
	for _, renderer := range renderers {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// RenderHTML renders the current state of form with the built-in HTML
// renderer.
func RenderHTML(ctx context.Context, form *DynamicForm, options RenderOptions, rendererOptions ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form.View(), options)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
