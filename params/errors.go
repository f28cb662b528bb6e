// SPDX-License-Identifier: EPL-2.0

package params

import (
	"errors"
	"fmt"
)

var (
	ErrNotFinite    = errors.New("value must be finite")
	ErrNotPositive  = errors.New("value must be greater than zero")
	ErrNegative     = errors.New("value must not be negative")
	ErrUnknownField = errors.New("unknown parameter field")
)

// ValidationError names the field a rejected write was aimed at.
type ValidationError struct {
	Field Field
	Value float64
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
