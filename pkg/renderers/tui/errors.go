package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoTemplates is returned by Fill when there is nothing to choose from.
	ErrNoTemplates = errors.New("tui: no form templates available")
)
