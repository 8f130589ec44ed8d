package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-emsforms/pkg/render"
)

type namedRenderer struct {
	name        string
	contentType string
}

func (n namedRenderer) Name() string        { return n.name }
func (n namedRenderer) ContentType() string { return n.contentType }
func (n namedRenderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	return []byte(n.name + ":" + view.SubmitLabel), nil
}

func newRegistry(t *testing.T) *render.Registry {
	t.Helper()
	reg := render.NewRegistry()
	reg.MustRegister(namedRenderer{name: "vanilla", contentType: "text/html; charset=utf-8"})
	reg.MustRegister(namedRenderer{name: "tui", contentType: "application/json"})
	return reg
}

func TestRegistry_Register(t *testing.T) {
	reg := newRegistry(t)

	if err := reg.Register(namedRenderer{name: "TUI"}); err == nil {
		t.Fatalf("expected case-insensitive duplicate registration to fail")
	}
	if err := reg.Register(namedRenderer{name: "  "}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if diff := cmp.Diff([]string{"tui", "vanilla"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := newRegistry(t)

	if _, err := reg.Get("preact"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	got, err := reg.Get("")
	if err != nil || got.Name() != "vanilla" {
		t.Fatalf("default renderer = %v, %v", got, err)
	}
	got, err = reg.Get(" Tui ")
	if err != nil || got.Name() != "tui" {
		t.Fatalf("Get(Tui) = %v, %v", got, err)
	}
}

func TestRegistry_ForContentType(t *testing.T) {
	reg := newRegistry(t)

	cases := map[string]string{
		"application/json":                      "tui",
		"text/html,application/xhtml+xml;q=0.9": "vanilla",
		"application/xml;q=0.9, */*;q=0.8":      "vanilla",
	}
	for accept, want := range cases {
		got, err := reg.ForContentType(accept)
		if err != nil {
			t.Errorf("ForContentType(%q): %v", accept, err)
			continue
		}
		if got.Name() != want {
			t.Errorf("ForContentType(%q) = %s, want %s", accept, got.Name(), want)
		}
	}
	if _, err := reg.ForContentType("image/png"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestRegistry_Render(t *testing.T) {
	reg := newRegistry(t)
	out, contentType, err := reg.Render(context.Background(), "tui", render.FormView{SubmitLabel: "Create Employee"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "tui:Create Employee" || contentType != "application/json" {
		t.Fatalf("Render = %q, %q", out, contentType)
	}
}
