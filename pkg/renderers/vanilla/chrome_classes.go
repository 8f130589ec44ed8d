package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "emsforms-form"
	ClassField    ChromeClass = "emsforms-field"
	ClassLabel    ChromeClass = "emsforms-label"
	ClassRequired ChromeClass = "emsforms-required"
	ClassError    ChromeClass = "emsforms-error"
	ClassInvalid  ChromeClass = "emsforms-field--invalid"
)
