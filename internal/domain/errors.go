package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a record that is missing a required field or
	// carries a value outside its allowed domain.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotCollection is returned when a record payload is not a JSON array.
	ErrNotCollection = errors.New("input is not a collection of records")
)

// MalformedRecordError describes which field of a record is malformed.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %s: %s", e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

func malformed(field, format string, args ...any) *MalformedRecordError {
	return &MalformedRecordError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Diagnostic reports a per-record problem found while shaping a batch.
// Index is the record's position in the input collection.
type Diagnostic struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return fmt.Sprintf("record %d: %s: %s", d.Index, d.Field, d.Reason)
	}
	return fmt.Sprintf("record %d (%s): %s: %s", d.Index, d.Name, d.Field, d.Reason)
}

// diagnose converts an error into a Diagnostic for the record at index.
// Errors that are not a *MalformedRecordError are filed under field "record".
func diagnose(index int, name string, err error) Diagnostic {
	var me *MalformedRecordError
	if errors.As(err, &me) {
		return Diagnostic{Index: index, Name: name, Field: me.Field, Reason: me.Reason}
	}
	return Diagnostic{Index: index, Name: name, Field: "record", Reason: err.Error()}
}
