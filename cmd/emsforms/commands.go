package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/internal/config"
	"github.com/goliatone/go-emsforms/pkg/designer"
	"github.com/goliatone/go-emsforms/pkg/dynamicform"
	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/render"
	"github.com/goliatone/go-emsforms/pkg/renderers/tui"
	"github.com/goliatone/go-emsforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-emsforms/pkg/store"
	"github.com/goliatone/go-emsforms/pkg/templatefs"
	"github.com/goliatone/go-emsforms/pkg/validation"
)

func runTemplates(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("templates", out)
	cfgFlags := config.RegisterFlags(fs)
	search := fs.String("search", "", "Filter templates by name (case-insensitive substring)")
	active := fs.String("active", "", "Filter by active flag (true/false)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := store.ListFilter{Search: *search}
	if *active != "" {
		value, err := strconv.ParseBool(*active)
		if err != nil {
			return fmt.Errorf("invalid -active value %q: %w", *active, err)
		}
		filter.IsActive = &value
	}

	env, err := openEnvironment(ctx, fs, cfgFlags, out)
	if err != nil {
		return err
	}
	defer env.Close()

	templates, err := env.templates.List(ctx, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFIELDS\tACTIVE")
	for _, template := range templates {
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", template.ID, template.Name, len(template.Fields), template.IsActive)
	}
	return w.Flush()
}

func runRender(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("render", out)
	cfgFlags := config.RegisterFlags(fs)
	templateID := fs.Int64("template", 0, "Template ID to preselect")
	employeeID := fs.Int64("employee", 0, "Employee ID to edit")
	showDesigner := fs.Bool("designer", false, "Render the designer view of -template")
	action := fs.String("action", "/employees/", "Form action URL")
	method := fs.String("method", "", "Form method (POST when empty)")
	output := fs.String("output", "", "Output file (stdout if empty)")
	htmlTemplates := fs.String("html-templates", "", "Directory overriding the embedded HTML templates")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := openEnvironment(ctx, fs, cfgFlags, out)
	if err != nil {
		return err
	}
	defer env.Close()

	renderer, err := vanilla.New(
		vanilla.WithValidator(env.validator),
		vanilla.WithTemplatesDir(*htmlTemplates),
	)
	if err != nil {
		return err
	}

	var html []byte
	if *showDesigner {
		engine, err := designer.New(env.templates, designer.WithLogger(env.logger.Named("designer")))
		if err != nil {
			return err
		}
		if *templateID != 0 {
			template, err := env.templates.Get(ctx, *templateID)
			if err != nil {
				return err
			}
			engine.Load(template)
		}
		html, err = renderer.RenderDesigner(ctx, engine.View())
		if err != nil {
			return err
		}
	} else {
		form, err := env.openForm(ctx, *templateID, *employeeID)
		if err != nil {
			return err
		}
		defer form.Close()
		html, err = renderer.Render(ctx, form.View(), render.RenderOptions{Action: *action, Method: *method})
		if err != nil {
			return err
		}
	}

	if *output == "" {
		_, err := out.Write(html)
		return err
	}
	if err := os.WriteFile(*output, html, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(out, "Form written to %s\n", *output)
	return nil
}

func runFill(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("fill", out)
	cfgFlags := config.RegisterFlags(fs)
	templateID := fs.Int64("template", 0, "Template ID to preselect")
	employeeID := fs.Int64("employee", 0, "Employee ID to edit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := openEnvironment(ctx, fs, cfgFlags, out)
	if err != nil {
		return err
	}
	defer env.Close()

	form, err := env.openForm(ctx, *templateID, *employeeID)
	if err != nil {
		return err
	}
	defer form.Close()

	prompts, err := tui.New(tui.WithValidator(env.validator), tui.WithOutput(out))
	if err != nil {
		return err
	}

	for {
		confirmed, err := prompts.Fill(ctx, form)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		employee, err := form.Submit(ctx)
		if err == nil {
			return printEmployee(out, employee, form)
		}
		var issues validation.Errors
		if !errors.As(err, &issues) {
			env.logger.Warn("submit failed", zap.Error(err))
		}
		reportFailure(out, form.View(), issues)
		if errors.Is(err, dynamicform.ErrNoTemplate) {
			return err
		}
	}
}

func runDesign(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("design", out)
	cfgFlags := config.RegisterFlags(fs)
	file := fs.String("file", "", "Start from the first template in a YAML or JSON file")
	templateID := fs.Int64("id", 0, "Start from an existing template")
	var edits designEdits
	fs.StringVar(&edits.name, "name", "", "Template name")
	fs.StringVar(&edits.description, "description", "", "Template description")
	fs.Var(&edits.remove, "remove", "Remove the field at index (repeatable)")
	fs.Var(&edits.add, "add", "Append a field: Label[:TYPE[:opt,opt]] (repeatable)")
	fs.Var(&edits.label, "label", "Relabel a field: index:text (repeatable)")
	fs.Var(&edits.required, "required", "Mark the field at index as required (repeatable)")
	fs.Var(&edits.move, "move", "Move a field: from:to (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file != "" && *templateID != 0 {
		return errors.New("-file and -id are mutually exclusive")
	}

	env, err := openEnvironment(ctx, fs, cfgFlags, out)
	if err != nil {
		return err
	}
	defer env.Close()

	engine, err := designer.New(env.templates, designer.WithLogger(env.logger.Named("designer")))
	if err != nil {
		return err
	}
	defer engine.Close()

	switch {
	case *file != "":
		seeds, err := templatefs.LoadFile(os.DirFS(filepath.Dir(*file)), filepath.Base(*file))
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("%s: no templates defined", *file)
		}
		engine.Load(seeds[0])
	case *templateID != 0:
		template, err := env.templates.Get(ctx, *templateID)
		if err != nil {
			return err
		}
		engine.Load(template)
	}

	if err := edits.apply(engine); err != nil {
		return err
	}

	saved, err := engine.Save(ctx)
	if err != nil {
		var issues validation.Errors
		if errors.As(err, &issues) {
			for _, issue := range issues {
				fmt.Fprintln(out, issue.Message)
			}
		}
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(designer.Finalize(saved).Payload())
}

// openForm opens the dynamic form engine and applies the optional template
// selection or edit target.
func (e *environment) openForm(ctx context.Context, templateID, employeeID int64) (*dynamicform.Engine, error) {
	form, err := dynamicform.Open(ctx, e.templates, e.employees,
		dynamicform.WithLogger(e.logger.Named("form")),
		dynamicform.WithValidator(e.validator),
	)
	if err != nil {
		return nil, err
	}
	switch {
	case employeeID != 0:
		employee, err := e.employees.Get(ctx, employeeID)
		if err != nil {
			form.Close()
			return nil, err
		}
		if err := form.Edit(employee); err != nil {
			form.Close()
			return nil, err
		}
	case templateID != 0:
		if err := form.SelectTemplate(templateID); err != nil {
			form.Close()
			return nil, err
		}
	}
	return form, nil
}

func reportFailure(out io.Writer, view render.FormView, issues validation.Errors) {
	if view.SelectorError != "" {
		fmt.Fprintln(out, view.SelectorError)
	}
	for _, message := range view.FormErrors {
		fmt.Fprintln(out, message)
	}
	for _, fv := range view.Fields {
		if fv.Error != "" {
			fmt.Fprintf(out, "%s: %s\n", fv.Field.FieldLabel, fv.Error)
		}
	}
	if len(issues) > 0 && view.SelectorError == "" && len(view.FormErrors) == 0 {
		fmt.Fprintf(out, "%d field(s) need attention.\n", len(issues))
	}
}

func printEmployee(out io.Writer, employee model.Employee, form *dynamicform.Engine) error {
	template, _ := form.Template()
	rows, warnings := dynamicform.Display(employee, template)
	fmt.Fprintf(out, "Saved employee %d (%s)\n", employee.ID, template.Name)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\n", row.Label, strings.TrimSpace(row.Value))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warning := range warnings {
		fmt.Fprintln(out, "warning:", warning.String())
	}
	return nil
}
