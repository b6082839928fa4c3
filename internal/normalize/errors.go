package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFields is returned when the request names no input fields.
	ErrNoFields = errors.New("no input fields to normalize")
	// ErrFieldNotFound is returned when an input or reference field is not in
	// the dataset schema.
	ErrFieldNotFound = errors.New("field not found")
	// ErrNotNumeric is returned when an input or reference field has a known
	// non-numeric type.
	ErrNotNumeric = errors.New("field is not numeric")
)

// Op identifies the phase in which a FieldError occurred.
type Op string

const (
	OpCreate    Op = "create"
	OpCalculate Op = "calculate"
)

// FieldError reports a platform failure while creating or calculating one
// target field. The run stops at the first FieldError; fields created before
// it are left in place.
type FieldError struct {
	Op    Op
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	switch e.Op {
	case OpCreate:
		return fmt.Sprintf("error adding field '%s': %v", e.Field, e.Err)
	case OpCalculate:
		return fmt.Sprintf("error calculating field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field '%s': %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(sentinel error, role, name string) error {
	return fmt.Errorf("%s field %q: %w", role, name, sentinel)
}
