package logging

import "fmt"

// OperationError annotates an error with the operation and result it
// belongs to.
type OperationError struct {
	Operation string
	ResultID  string
	Err       error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.ResultID != "" {
		return fmt.Sprintf("%s (result_id=%s): %v", e.Operation, e.ResultID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError wraps err; a nil err stays nil.
func NewOperationError(operation, resultID string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, ResultID: resultID, Err: err}
}
