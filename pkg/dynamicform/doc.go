// Package dynamicform implements the data-entry engine that renders a chosen
// form template and collects one employee record.
//
// The engine moves through a small state machine:
//
//	NoTemplateSelected -> TemplateSelected -> Submitting -> SubmitSucceeded
//	                                                     \-> SubmitFailed
//
// A failed submit keeps every entered value and returns to TemplateSelected
// on the next edit. While an existing employee is being edited the template
// is locked.
package dynamicform
