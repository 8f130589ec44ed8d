// Package designer implements the template authoring engine: an in-memory
// template that is edited through local, infallible operations (add, remove,
// relabel, retype, reorder, drag and drop) and persisted through a
// store.TemplateStore.
//
// Save is the only fallible operation. It finalizes names and ordering,
// delegates to the store and replaces the in-memory template only when the
// call succeeds, so a failed save can simply be retried.
package designer
