package triage

import (
	"errors"
	"fmt"
)

// ErrValidation matches every input validation failure via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports which input was rejected and why
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
