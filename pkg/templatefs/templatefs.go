// Package templatefs loads form template seed files from a file system and
// seeds them into a template store.
//
// A seed file is YAML (.yaml, .yml) or JSON (.json) and holds either one
// template or a list under a top-level "templates" key:
//
//	name: Onboarding
//	fields:
//	  - fieldLabel: Full Name
//	    isRequired: true
//	  - fieldLabel: Department
//	    fieldType: select
//	    fieldOptions:
//	      - {label: HR, value: hr}
package templatefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

type seedTemplate struct {
	Name        string                  `yaml:"name" json:"name"`
	Description string                  `yaml:"description" json:"description"`
	IsActive    *bool                   `yaml:"isActive" json:"isActive"`
	Fields      []model.FieldDefinition `yaml:"fields" json:"fields"`
}

type seedFile struct {
	seedTemplate `yaml:",inline"`
	Templates    []seedTemplate `yaml:"templates" json:"templates"`
}

// UnmarshalJSON mirrors the inline YAML layout for JSON seed files.
func (f *seedFile) UnmarshalJSON(data []byte) error {
	var single seedTemplate
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	var list struct {
		Templates []seedTemplate `json:"templates"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	f.seedTemplate = single
	f.Templates = list.Templates
	return nil
}

// LoadFS reads every seed file under root in fsys, in path order. Field
// names default to the name derived from the label and every template is
// normalized.
func LoadFS(fsys fs.FS, root string) ([]model.FormTemplate, error) {
	if root == "" {
		root = "."
	}
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("templatefs: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	var out []model.FormTemplate
	for _, p := range paths {
		templates, err := LoadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, templates...)
	}
	return out, nil
}

// LoadFile reads one seed file.
func LoadFile(fsys fs.FS, name string) ([]model.FormTemplate, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("templatefs: read %s: %w", name, err)
	}

	var file seedFile
	if strings.EqualFold(path.Ext(name), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("templatefs: parse %s: %w", name, err)
	}

	seeds := file.Templates
	if strings.TrimSpace(file.Name) != "" || len(file.Fields) > 0 {
		seeds = append([]seedTemplate{file.seedTemplate}, seeds...)
	}
	out := make([]model.FormTemplate, 0, len(seeds))
	for idx, seed := range seeds {
		template, err := seed.template()
		if err != nil {
			return nil, fmt.Errorf("templatefs: %s template %d: %w", name, idx, err)
		}
		out = append(out, template)
	}
	return out, nil
}

func (s seedTemplate) template() (model.FormTemplate, error) {
	template := model.FormTemplate{
		Name:        s.Name,
		Description: s.Description,
		IsActive:    true,
		Fields:      make([]model.FieldDefinition, 0, len(s.Fields)),
	}
	if s.IsActive != nil {
		template.IsActive = *s.IsActive
	}
	for idx, field := range s.Fields {
		field.ID = ""
		if strings.TrimSpace(field.FieldName) == "" {
			field.FieldName = model.FieldNameFromLabel(model.SafeLabel(field.FieldLabel, idx))
		}
		template.Fields = append(template.Fields, field)
	}
	template = model.NormalizeTemplate(template)
	if template.Name == "" {
		return model.FormTemplate{}, fmt.Errorf("name is required")
	}
	return template, nil
}

// Seed creates every template whose name is not yet present in the store
// and returns the templates it created.
func Seed(ctx context.Context, templates store.TemplateStore, seeds []model.FormTemplate, logger *zap.Logger) ([]model.FormTemplate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := templates.List(ctx, store.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("templatefs: list templates: %w", err)
	}
	names := make(map[string]struct{}, len(existing))
	for _, template := range existing {
		names[strings.ToLower(template.Name)] = struct{}{}
	}

	var created []model.FormTemplate
	for _, seed := range seeds {
		key := strings.ToLower(seed.Name)
		if _, ok := names[key]; ok {
			logger.Debug("seed template already present", zap.String("name", seed.Name))
			continue
		}
		template, err := templates.Create(ctx, seed.Payload())
		if err != nil {
			return created, fmt.Errorf("templatefs: seed %q: %w", seed.Name, err)
		}
		names[key] = struct{}{}
		created = append(created, template)
		logger.Info("seeded template", zap.String("name", template.Name), zap.Int64("template_id", template.ID))
	}
	return created, nil
}
