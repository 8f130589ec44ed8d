package template

import (
	"io"
)

// TemplateRenderer renders named templates with a data context. When writers
// are supplied the output is also written to each of them.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
