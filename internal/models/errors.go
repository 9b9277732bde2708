package models

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a trip with the requested id does not exist.
var ErrNotFound = errors.New("place not found")

// FieldError describes one rejected field.
type FieldError struct {
	// Field is the field name, or a path such as "places[0].placeName"
	// for batch payloads.
	Field string `json:"field"`
	// Message is the human-readable reason.
	Message string `json:"msg"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Message returns the message reported for field, or "" if the field passed.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Errors {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}
