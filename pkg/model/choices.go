package model

import (
	"encoding/json"
	"strings"
)

// EncodeChoices encodes the picked values of a multi-choice (CHECKBOX)
// answer as a JSON array ordered like options. Values that are not declared
// options are dropped and an empty selection encodes as "".
func EncodeChoices(options []FieldOption, picked []string) string {
	set := make(map[string]struct{}, len(picked))
	for _, value := range picked {
		set[value] = struct{}{}
	}
	ordered := make([]string, 0, len(set))
	for _, option := range options {
		if _, ok := set[option.Value]; ok {
			ordered = append(ordered, option.Value)
			delete(set, option.Value)
		}
	}
	if len(ordered) == 0 {
		return ""
	}
	raw, err := json.Marshal(ordered)
	if err != nil {
		return ""
	}
	return string(raw)
}

// DecodeChoices reverses EncodeChoices. A value that is not a JSON array is
// read as a single pick so answers stored before aggregation still load.
func DecodeChoices(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err == nil {
		return values
	}
	return []string{value}
}
