package normalizer

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrTypeCoercion = errors.New("type coercion error")
)

// DiscardError explains why a raw row was dropped. It unwraps to
// ErrMissingField, ErrTypeCoercion or dates.ErrDateFormat.
type DiscardError struct {
	Row   int
	Field string
	Err   error
}

func (e *DiscardError) Error() string {
	return fmt.Sprintf("row %d: field %q: %v", e.Row, e.Field, e.Err)
}

func (e *DiscardError) Unwrap() error {
	return e.Err
}

func discard(row int, field string, err error) *DiscardError {
	return &DiscardError{Row: row, Field: field, Err: err}
}

func missing(row int, field string) *DiscardError {
	return discard(row, field, ErrMissingField)
}

func coercion(row int, field string, v interface{}, want string) *DiscardError {
	return discard(row, field, fmt.Errorf("%w: %v (%T) is not %s", ErrTypeCoercion, v, v, want))
}
