package analysis

import (
	"encoding/json"
	"fmt"
)

// Result is either a report or the error that prevented it.
type Result[T any] struct {
	Report *T
	Err    error
}

// OK reports whether the analysis produced a report.
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Report != nil
}

// ErrorMessage returns the message carried by a failed result, or "".
func (r Result[T]) ErrorMessage() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Report == nil {
		return "analysis produced no report"
	}
	return ""
}

// MarshalJSON emits the report itself, or {"error": msg} on failure.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(map[string]string{"error": r.ErrorMessage()})
	}
	return json.Marshal(r.Report)
}

// guard runs fn and converts a panic into a ComputationError so that no failure
// escapes the analysis boundary.
func guard[T any](op string, fn func() (*T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[T]{Err: &ComputationError{Op: op, Err: fmt.Errorf("%v", p)}}
		}
	}()

	report, err := fn()
	if err != nil {
		return Result[T]{Err: computation(op, err)}
	}
	return Result[T]{Report: report}
}
