package render

// RenderOptions carry per-request data that renderers use to customise their
// output without touching engine state.
type RenderOptions struct {
	// Action is the form submission URL. Empty renders no action attribute.
	Action string
	// Method overrides the default POST. Verbs other than GET/POST are sent as
	// POST plus a hidden _method input.
	Method string
	// Hidden inputs emitted before the visible fields (CSRF tokens, the
	// template id when the selector is disabled, ...).
	Hidden map[string]string
	// Errors merges server-side feedback keyed by field id into the view. Use
	// MapErrorPayload to build it from a raw response.
	Errors map[string][]string
	// FormErrors are extra form-level messages.
	FormErrors []string
}
