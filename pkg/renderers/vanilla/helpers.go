package vanilla

import (
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

const inputNamePrefix = "fields."

// InputName is the form input name carrying a field's answer.
func InputName(id model.FieldID) string {
	return inputNamePrefix + string(id)
}

// domID is the element id of a field control. Chrome built in Go and the
// field templates both receive it, so labels and inputs agree.
func domID(id model.FieldID, suffix string) string {
	var b strings.Builder
	b.WriteString("field-")
	for _, r := range strings.TrimSpace(string(id)) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if suffix != "" {
		b.WriteString("-" + suffix)
	}
	return b.String()
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
