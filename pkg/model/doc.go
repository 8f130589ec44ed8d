// Package model defines the field definition, template and employee types
// shared by the designer, the dynamic form engine and the renderers.
//
// Field types form a closed enumeration (TEXT, EMAIL, PASSWORD, NUMBER, DATE,
// PHONE, TEXTAREA, SELECT, CHECKBOX, RADIO, FILE); unknown tags resolve to
// TEXT. NormalizeField fills missing attributes with positional defaults and
// is idempotent. The *Payload and *Record types mirror the snake-cased wire
// format of the backend: payloads are sent, records are received.
package model
