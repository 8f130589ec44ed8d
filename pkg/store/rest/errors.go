package rest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/store"
)

var messageKeys = []string{"message", "detail", "error"}

// decodeError turns an error response into a CollaboratorError. The status
// code only selects the fallback text; it never reaches the caller.
func decodeError(status int, body []byte) error {
	out := &store.CollaboratorError{}
	if status == http.StatusNotFound {
		out.Cause = store.ErrNotFound
	}
	if status == http.StatusUnauthorized {
		out.Cause = store.ErrUnauthenticated
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		switch typed := decoded.(type) {
		case map[string]any:
			for _, key := range messageKeys {
				if text := firstText(typed[key]); text != "" {
					out.Message = text
					break
				}
			}
			fields := make(map[string][]string)
			for key, value := range typed {
				if isMessageKey(key) {
					continue
				}
				collectMessages(fields, key, value)
			}
			if len(fields) > 0 {
				out.Fields = fields
			}
		case []any:
			out.Message = firstText(typed)
		case string:
			out.Message = strings.TrimSpace(typed)
		}
	}

	if out.Message == "" && len(out.Fields) > 0 {
		out.Message = firstFieldMessage(out.Fields)
	}
	if out.Message == "" {
		out.Message = fallbackMessage(status)
	}
	return out
}

// collectMessages flattens nested validation bodies into dotted keys, e.g.
// {"field_values": [{"field_value": ["bad"]}]} becomes
// "field_values.0.field_value".
func collectMessages(into map[string][]string, key string, value any) {
	switch typed := value.(type) {
	case string:
		if text := strings.TrimSpace(typed); text != "" {
			into[key] = append(into[key], text)
		}
	case []any:
		for idx, item := range typed {
			switch item.(type) {
			case string:
				collectMessages(into, key, item)
			default:
				collectMessages(into, key+"."+strconv.Itoa(idx), item)
			}
		}
	case map[string]any:
		for child, nested := range typed {
			collectMessages(into, key+"."+child, nested)
		}
	}
}

func firstText(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		for _, item := range typed {
			if text := firstText(item); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstFieldMessage(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if len(fields[key]) > 0 {
			return fields[key][0]
		}
	}
	return ""
}

func isMessageKey(key string) bool {
	for _, candidate := range messageKeys {
		if key == candidate {
			return true
		}
	}
	return false
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Session expired. Please sign in again."
	case status == http.StatusForbidden:
		return "You do not have permission to perform this action."
	case status == http.StatusNotFound:
		return "The requested record was not found."
	case status >= http.StatusInternalServerError:
		return "Server error. Please try again later."
	default:
		return store.DefaultMessage
	}
}
