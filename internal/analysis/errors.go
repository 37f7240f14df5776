package analysis

import (
	"errors"
	"fmt"

	"hostel-mcp/internal/series"
)

// ValidationError reports malformed, missing or mismatched input.
type ValidationError = series.ValidationError

// ComputationError reports an unexpected failure while computing a report.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

func computation(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &ComputationError{Op: op, Err: err}
}
