package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// Option customises a Validator.
type Option func(*Validator)

// WithCheckboxRequired turns on required enforcement for CHECKBOX fields.
// Checkbox groups are exempt by default.
func WithCheckboxRequired(enabled bool) Option {
	return func(v *Validator) {
		v.checkboxRequired = enabled
	}
}

// Validator evaluates field definitions against string values.
type Validator struct {
	checkboxRequired bool
	formats          *validator.Validate

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		formats:  validator.New(),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// RequiredMessage is the message reported for an empty required field.
func RequiredMessage(label string) string {
	return label + " is required"
}

// EnforcesRequired reports whether required-ness is checked for the field.
func (v *Validator) EnforcesRequired(field model.FieldDefinition) bool {
	if !field.IsRequired {
		return false
	}
	if model.ParseFieldType(string(field.FieldType)) == model.FieldTypeCheckbox {
		return v.checkboxRequired
	}
	return true
}

// Field validates one value. It returns nil when the value is acceptable.
// Rules other than requiredness only apply to non-empty values.
func (v *Validator) Field(field model.FieldDefinition, value string) *Issue {
	label := model.SafeLabel(field.FieldLabel, field.FieldOrder)
	fieldType := model.ParseFieldType(string(field.FieldType))

	if IsEmpty(fieldType, value) {
		if v.EnforcesRequired(field) {
			return &Issue{FieldID: field.ID, Message: RequiredMessage(label)}
		}
		return nil
	}

	if message := v.checkRules(field.ValidationRules, label, value); message != "" {
		return &Issue{FieldID: field.ID, Message: message}
	}
	if message := v.checkFormat(fieldType, label, value); message != "" {
		return &Issue{FieldID: field.ID, Message: message}
	}
	return nil
}

// Form validates every field against values keyed by field id and returns
// the aggregated issues in field order.
func (v *Validator) Form(fields []model.FieldDefinition, values map[model.FieldID]string) Errors {
	var issues Errors
	for _, field := range fields {
		if issue := v.Field(field, values[field.ID]); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

// IsEmpty reports whether a value counts as unanswered. Checkbox answers are
// JSON arrays, so an empty array is empty too.
func IsEmpty(fieldType model.FieldType, value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	if fieldType == model.FieldTypeCheckbox {
		return len(model.DecodeChoices(trimmed)) == 0
	}
	return false
}

func (v *Validator) checkRules(rules *model.ValidationRules, label, value string) string {
	if rules.IsZero() {
		return ""
	}
	length := utf8.RuneCountInString(value)
	if rules.MinLength != nil && length < *rules.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength)
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength)
	}
	if pattern := strings.TrimSpace(rules.Pattern); pattern != "" {
		if re := v.compile(pattern); re != nil && !re.MatchString(value) {
			return label + " has an invalid format"
		}
	}
	return ""
}

func (v *Validator) checkFormat(fieldType model.FieldType, label, value string) string {
	trimmed := strings.TrimSpace(value)
	switch fieldType {
	case model.FieldTypeEmail:
		if v.formats.Var(trimmed, "email") != nil {
			return label + " must be a valid email address"
		}
	case model.FieldTypeNumber:
		if v.formats.Var(trimmed, "numeric") != nil && !isFiniteFloat(trimmed) {
			return label + " must be a number"
		}
	case model.FieldTypeDate:
		if v.formats.Var(trimmed, "datetime=2006-01-02") != nil {
			return label + " must be a date (YYYY-MM-DD)"
		}
	}
	return ""
}

// compile caches patterns; invalid expressions are cached as nil and skipped.
func (v *Validator) compile(pattern string) *regexp.Regexp {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	v.patterns[pattern] = re
	return re
}

// isFiniteFloat accepts exponent forms such as "1e3" that the numeric tag
// rejects. NaN and the infinities are not numbers for a form.
func isFiniteFloat(value string) bool {
	f, err := strconv.ParseFloat(value, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
