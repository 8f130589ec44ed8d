// Package validation applies the field-level rules of a template to entered
// values: requiredness, length bounds, patterns and the format checks implied
// by EMAIL, NUMBER and DATE fields. It performs no I/O and is safe to call on
// every keystroke.
package validation
