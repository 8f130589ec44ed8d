package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is wrapped by stores when a record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUnauthenticated is wrapped when a call needs a credential and the
	// session has none.
	ErrUnauthenticated = errors.New("store: no session credential")
)

// DefaultMessage is shown when a failure carries no usable text.
const DefaultMessage = "Request failed. Please try again."

// CollaboratorError is the single failure shape surfaced by every store.
// Fields carries server-reported per-field messages keyed as the server sent
// them; callers map them onto field ids for inline display.
type CollaboratorError struct {
	Message string
	Fields  map[string][]string
	Cause   error
}

func (e *CollaboratorError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return DefaultMessage
}

func (e *CollaboratorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Newf builds a CollaboratorError wrapping cause.
func Newf(cause error, format string, args ...any) *CollaboratorError {
	return &CollaboratorError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AsCollaboratorError normalizes err. Errors that already are (or wrap) a
// CollaboratorError are returned as such; anything else is wrapped with its
// own text as the message.
func AsCollaboratorError(err error) *CollaboratorError {
	if err == nil {
		return nil
	}
	var collaborator *CollaboratorError
	if errors.As(err, &collaborator) {
		if strings.TrimSpace(collaborator.Message) == "" {
			collaborator.Message = firstFieldMessage(collaborator.Fields)
		}
		return collaborator
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = DefaultMessage
	}
	return &CollaboratorError{Message: message, Cause: err}
}

func firstFieldMessage(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, msg := range fields[key] {
			if strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	return DefaultMessage
}
