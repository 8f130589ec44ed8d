// Package store defines the persistence collaborators used by the designer
// and the dynamic form: a template store, an employee store and the session
// that authenticates them.
//
// Implementations live in sub-packages (memory, rest, sqlite). Every
// implementation reports failures as *CollaboratorError so callers can show a
// single message and retry without inspecting transport details.
package store
