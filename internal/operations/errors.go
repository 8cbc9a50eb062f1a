package operations

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrDuplicateOperation = errors.New("operation already registered")
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrZeroDimensions     = errors.New("target dimensions cannot be zero")
)

// TransformError reports a failed transform of a single file
type TransformError struct {
	Operation string
	FilePath  string
	Err       error
}

func (e *TransformError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s failed for file %s: %v", e.Operation, e.FilePath, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new transform error
func NewTransformError(operation, filePath string, err error) *TransformError {
	return &TransformError{
		Operation: operation,
		FilePath:  filePath,
		Err:       err,
	}
}

func invalidParams(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
