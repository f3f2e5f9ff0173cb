package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for field operations.
var (
	// ErrInvalidState indicates a NaN or Inf in a state vector or field.
	ErrInvalidState = errors.New("dynamo: invalid value (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates a buffer whose length does not match
	// the grid or particle count it is used with.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between buffer and grid")
)

// FieldError wraps an error with the grid location it was detected at.
type FieldError struct {
	X, Y    int
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("grid point (%d,%d): %v", e.X, e.Y, e.Wrapped)
}

func (e *FieldError) Unwrap() error {
	return e.Wrapped
}
