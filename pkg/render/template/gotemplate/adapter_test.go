package gotemplate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-emsforms/pkg/render/template/gotemplate"
)

var files = fstest.MapFS{
	"hello.tmpl": {Data: []byte(`Hello {{ name }}!`)},
	"label.tmpl": {Data: []byte(`{{ label }}`)},
	"field.tmpl": {Data: []byte(`{{ field.fieldLabel }}#{{ field.fieldId }}`)},
}

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)
	var buf strings.Builder

	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hello Ada!" || buf.String() != result {
		t.Fatalf("unexpected output result=%q writer=%q", result, buf.String())
	}
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)
	data := map[string]any{
		"field": struct {
			Label string `json:"fieldLabel"`
			ID    string `json:"fieldId"`
		}{Label: "Full Name", ID: "12"},
	}
	result, err := engine.RenderTemplate("field", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Full Name#12" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_RenderTemplateAutoescapes(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Label string `json:"label"`
	}{Label: "<b>Name</b>"}

	result, err := engine.RenderTemplate("label", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "&lt;b&gt;Name&lt;/b&gt;" {
		t.Fatalf("expected autoescaped output, got %q", result)
	}
	if _, err := engine.RenderTemplate("label", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func TestEngine_BaseDirOverridesFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tmpl"), []byte(`Hi {{ name }}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	engine := newEngine(t, gotemplate.WithBaseDir(dir))
	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Grace"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hi Grace" {
		t.Fatalf("expected disk template to win, got %q", result)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}
