package core

import "strings"

// FieldError names one rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError collects every failing field of a draft record so the
// caller can report them all at once. A nil/empty ValidationError is not
// an error; use OrNil.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("invalid fields: ")
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Reason)
	}
	return b.String()
}

// FieldNames returns the failing field names in order of detection.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// OrNil returns the error when at least one field failed, nil otherwise.
func (e ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return &e
}
