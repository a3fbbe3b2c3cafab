package vdbparam

import "fmt"

// Error type names carried in [ParamError.Type].
const (
	ErrTypeValue    = "ValueError"    // blank or out-of-range parameter
	ErrTypeSchema   = "SchemaError"   // fields do not conform to the collection schema
	ErrTypeType     = "TypeError"     // values of the wrong shape for a data type
	ErrTypeProtocol = "ProtocolError" // malformed wire payload
)

// ErrParam is a sentinel for use with errors.Is to check whether any error in
// a chain is a *ParamError.
var ErrParam = &ParamError{}

// ParamError is the single validation error kind returned by builders and
// converters. A failed conversion never returns a partial request.
type ParamError struct {
	Type    string // one of the ErrType* constants
	Message string
	Field   string // offending field name, empty when not field specific
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is supports errors.Is by matching any *ParamError target.
func (e *ParamError) Is(target error) bool {
	_, ok := target.(*ParamError)
	return ok
}

func newValueError(field, format string, args ...any) *ParamError {
	return &ParamError{Type: ErrTypeValue, Message: fmt.Sprintf(format, args...), Field: field}
}

func newSchemaError(field, format string, args ...any) *ParamError {
	return &ParamError{Type: ErrTypeSchema, Message: fmt.Sprintf(format, args...), Field: field}
}

func newTypeError(field, format string, args ...any) *ParamError {
	return &ParamError{Type: ErrTypeType, Message: fmt.Sprintf(format, args...), Field: field}
}

func newProtocolError(format string, args ...any) *ParamError {
	return &ParamError{Type: ErrTypeProtocol, Message: fmt.Sprintf(format, args...)}
}
