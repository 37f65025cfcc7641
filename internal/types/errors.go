package types

import "fmt"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ParseError reports a source document that could not be read as a
// monitoring message. The document is skipped; other documents continue.
type ParseError struct {
	// Origin is the file name of the document.
	Origin string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Origin, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports a table that lacks a column the encoder requires.
// It aborts the whole encode call.
type SchemaError struct {
	// Column is the missing column name.
	Column string

	// Message is an optional detail.
	Message string
}

func (e *SchemaError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("required column %q: %s", e.Column, e.Message)
	}
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// FormatError describes a value that could not be interpreted as the type
// its field expects. It is never fatal: conversions keep the raw text and
// validation reports it as a warning.
type FormatError struct {
	Field    string
	Value    string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("field %s: value %q is not a valid %s", e.Field, e.Value, e.Expected)
}
