package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/fields/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle. Paths are rooted at
// "templates/", e.g. "templates/form.tmpl".
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
