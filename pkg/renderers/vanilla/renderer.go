package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	rendertemplate "github.com/goliatone/go-emsforms/pkg/render/template"
	gotemplate "github.com/goliatone/go-emsforms/pkg/render/template/gotemplate"
	"github.com/goliatone/go-emsforms/pkg/validation"
	"github.com/goliatone/go-emsforms/pkg/widgets"
)

const (
	formTemplate     = "templates/form.tmpl"
	designerTemplate = "templates/designer.tmpl"

	// Theme partial keys. Field partials use "forms.<field type>", e.g.
	// "forms.date" or "forms.select".
	partialForm     = "forms.form"
	partialDesigner = "forms.designer"
	partialPrefix   = "forms."
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	validator        *validation.Validator
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. Paths
// must match the embedded layout ("templates/fields/input.tmpl", ...).
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk laid out like the
// embedded bundle. Files found there win; anything missing falls back to the
// bundle, so a directory holding only templates/form.tmpl is enough.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies a resolved theme: partial overrides, CSS variables and the
// theme/variant data attributes.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithValidator sets the validator RenderField uses to compute messages.
func WithValidator(v *validation.Validator) Option {
	return func(cfg *config) {
		if v != nil {
			cfg.validator = v
		}
	}
}

// Renderer renders dynamic forms and the designer as HTML. It also satisfies
// render.FieldRenderer for single-field rendering.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Registry
	validator *validation.Validator
	theme     themeContext
	pages     map[string]string
}

var (
	_ render.Renderer      = (*Renderer)(nil)
	_ render.FieldRenderer = (*Renderer)(nil)
)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.validator == nil {
		cfg.validator = validation.New()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(cfg.templatesDir),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	r := &Renderer{
		templates: renderer,
		widgets:   widgets.NewRegistry(),
		validator: cfg.validator,
		theme:     buildThemeContext(cfg.theme),
		pages: map[string]string{
			partialForm:     formTemplate,
			partialDesigner: designerTemplate,
		},
	}
	r.applyPartials(r.theme.Partials)
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the dynamic form page for a snapshot.
func (r *Renderer) Render(ctx context.Context, view render.FormView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	// the template context is JSON round-tripped, so numbers are passed as
	// strings to keep them from rendering as floats
	view = render.ApplyOptions(view, options)

	fields := make([]string, 0, len(view.Fields))
	for _, fv := range view.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		markup, err := r.fieldMarkup(fv.Field, fv.Value, fv.Error)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, markup)
	}

	hidden := options.Hidden
	if view.SelectorDisabled && view.SelectedTemplateID != 0 {
		hidden = render.MergeHiddenFields(hidden, render.TemplateID(view.SelectedTemplateID))
	}
	method, override := formMethod(options.Method)
	if override != "" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden("_method", override))
	}

	hiddenList := make([]map[string]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden) {
		hiddenList = append(hiddenList, map[string]any{"name": field.Name, "value": field.Value})
	}

	templates := make([]map[string]any, 0, len(view.Templates))
	for _, choice := range view.Templates {
		templates = append(templates, map[string]any{
			"id":       strconv.FormatInt(choice.ID, 10),
			"name":     plainText(choice.Name),
			"selected": choice.Selected || (choice.ID != 0 && choice.ID == view.SelectedTemplateID),
		})
	}

	data := map[string]any{
		"theme": r.theme.data(),
		"form": map[string]any{
			"method":            method,
			"action":            strings.TrimSpace(options.Action),
			"hidden":            hiddenList,
			"errors":            view.FormErrors,
			"templates":         templates,
			"selector_disabled": view.SelectorDisabled,
			"selector_error":    view.SelectorError,
			"class":             string(ClassForm),
			"has_template":      view.SelectedTemplateID != 0,
			"description":       richText(view.Description),
			"fields":            fields,
			"empty_note":        view.EmptyNote,
			"submit_label":      view.SubmitLabel,
			"submit_disabled":   view.SubmitDisabled,
			"submitting":        view.Submitting,
		},
	}

	result, err := r.templates.RenderTemplate(r.pages[partialForm], data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderDesigner writes the designer page: template metadata inputs, one
// editable row per field and a live preview of each field's widget.
func (r *Renderer) RenderDesigner(ctx context.Context, view render.DesignerView) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	fieldTypes := view.FieldTypes
	if len(fieldTypes) == 0 {
		fieldTypes = model.FieldTypes()
	}

	rows := make([]map[string]any, 0, len(view.Fields))
	for idx, field := range view.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		preview, err := r.controlMarkup(field, "", "")
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: preview field %d: %w", idx, err)
		}
		current := model.ParseFieldType(string(field.FieldType))
		types := make([]map[string]any, 0, len(fieldTypes))
		for _, fieldType := range fieldTypes {
			types = append(types, map[string]any{"value": string(fieldType), "selected": fieldType == current})
		}
		rows = append(rows, map[string]any{
			"id":       string(field.ID),
			"label":    field.FieldLabel,
			"required": field.IsRequired,
			"types":    types,
			"preview":  preview,
		})
	}

	data := map[string]any{
		"theme": r.theme.data(),
		"designer": map[string]any{
			"name":        view.Name,
			"description": view.Description,
			"summary":     richText(view.Description),
			"rows":        rows,
			"saving":      view.Saving,
			"error":       view.Error,
		},
	}
	result, err := r.templates.RenderTemplate(r.pages[partialDesigner], data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render designer: %w", err)
	}
	return []byte(result), nil
}

// RenderField renders one field with its chrome and validates value. The
// HTML renderer never calls onChange; posted values flow back through
// Collect.
func (r *Renderer) RenderField(ctx context.Context, field model.FieldDefinition, value string, _ render.ChangeFunc) (render.FieldOutput, error) {
	if err := ctx.Err(); err != nil {
		return render.FieldOutput{}, err
	}
	message := ""
	if issue := r.validator.Field(field, value); issue != nil {
		message = issue.Message
	}
	markup, err := r.fieldMarkup(field, value, message)
	if err != nil {
		return render.FieldOutput{}, fmt.Errorf("vanilla renderer: %w", err)
	}
	return render.FieldOutput{
		FieldID: field.ID,
		Widget:  r.widgets.Resolve(field),
		Markup:  markup,
		Value:   value,
		Error:   message,
	}, nil
}

func (r *Renderer) applyPartials(partials map[string]string) {
	for key, path := range partials {
		path = strings.TrimSpace(path)
		if path == "" || !strings.HasPrefix(key, partialPrefix) {
			continue
		}
		switch key {
		case partialForm, partialDesigner:
			r.pages[key] = path
		default:
			fieldType := model.FieldType(strings.ToUpper(strings.TrimPrefix(key, partialPrefix)))
			r.widgets.OverrideTemplate(fieldType, path)
		}
	}
}

func formMethod(raw string) (method, override string) {
	switch upper := strings.ToUpper(strings.TrimSpace(raw)); upper {
	case "", "POST":
		return "post", ""
	case "GET":
		return "get", ""
	default:
		return "post", upper
	}
}

type themeContext struct {
	Name     string
	Variant  string
	Partials map[string]string
	CSSVars  map[string]string
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	return themeContext{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: cloneStringMap(cfg.Partials),
		CSSVars:  cloneStringMap(cfg.CSSVars),
	}
}

func (t themeContext) data() map[string]any {
	return map[string]any{
		"name":           t.Name,
		"variant":        t.Variant,
		"css_vars_style": cssVarsStyle(t.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSpace(key)
		value := strings.TrimSpace(vars[key])
		if name == "" || value == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, "; ")
}
