package model

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// DefaultLabel returns the positional label for the field at index.
func DefaultLabel(index int) string {
	return "Field " + strconv.Itoa(index+1)
}

// DefaultName returns the positional machine name for the field at index.
func DefaultName(index int) string {
	return "field_" + strconv.Itoa(index+1)
}

// PlaceholderID returns the positional id used for fields that arrive
// without one.
func PlaceholderID(index int) FieldID {
	return FieldID("field-" + strconv.Itoa(index))
}

// FieldNameFromLabel derives a machine key from a display label: trimmed,
// lower-cased, with whitespace runs collapsed to underscores.
func FieldNameFromLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	return whitespacePattern.ReplaceAllString(strings.ToLower(trimmed), "_")
}

// SafeLabel returns the trimmed label, or the positional default when the
// label is blank.
func SafeLabel(label string, index int) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return DefaultLabel(index)
}
