package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by field id and form-level messages.
type ErrorMapping struct {
	Fields map[model.FieldID][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps the keys of a server error payload onto the fields of
// a template. A key matches a field by id or field_name; "field_values.N"
// style keys address the N-th submitted value, where submitted lists the
// field ids in payload order (nil means template order). Unknown keys become
// form-level messages so nothing is lost.
func MapErrorPayload(fields []model.FieldDefinition, submitted []model.FieldID, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[model.FieldID][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}
	if submitted == nil {
		submitted = make([]model.FieldID, 0, len(fields))
		for _, field := range fields {
			submitted = append(submitted, field.ID)
		}
	}

	byKey := make(map[string]model.FieldID, len(fields)*2)
	for _, field := range fields {
		if field.ID == "" {
			continue
		}
		byKey[string(field.ID)] = field.ID
		if name := strings.TrimSpace(field.FieldName); name != "" {
			byKey[name] = field.ID
		}
	}

	for _, rawKey := range sortedKeys(payload) {
		messages := normalizeMessages(payload[rawKey])
		if len(messages) == 0 {
			continue
		}
		id, ok := resolveErrorKey(rawKey, byKey, submitted)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyOptions merges RenderOptions feedback into a view. Existing field
// messages win over server ones.
func ApplyOptions(view FormView, options RenderOptions) FormView {
	out := view
	out.Fields = append([]FieldView(nil), view.Fields...)
	for idx := range out.Fields {
		if out.Fields[idx].Error != "" {
			continue
		}
		if messages := options.Errors[string(out.Fields[idx].Field.ID)]; len(messages) > 0 {
			out.Fields[idx].Error = strings.Join(normalizeMessages(messages), " ")
		}
	}
	out.FormErrors = MergeFormErrors(view.FormErrors, options.FormErrors...)
	return out
}

// FieldErrors converts a mapping into the string keyed form RenderOptions
// expects.
func (m ErrorMapping) FieldErrors() map[string][]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m.Fields))
	for id, messages := range m.Fields {
		out[string(id)] = append([]string(nil), messages...)
	}
	return out
}

func resolveErrorKey(raw string, byKey map[string]model.FieldID, submitted []model.FieldID) (model.FieldID, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", false
	}

	if segments[0] == "field_values" || segments[0] == "fields" {
		if len(segments) < 2 {
			return "", false
		}
		index, err := strconv.Atoi(segments[1])
		if err != nil {
			id, ok := byKey[segments[1]]
			return id, ok
		}
		if index < 0 || index >= len(submitted) {
			return "", false
		}
		return submitted[index], true
	}

	id, ok := byKey[segments[0]]
	return id, ok
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data":
			segments = segments[1:]
			continue
		}
		break
	}
	return segments
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedKeys(payload map[string][]string) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "message", "detail", "error", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
