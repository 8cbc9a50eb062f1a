package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"pixbatch/internal/pathguard"
)

var (
	ErrNoItems     = errors.New("no items provided")
	ErrNoTransform = errors.New("no transform provided")
	ErrCancelled   = errors.New("cancelled")
	ErrTimeout     = errors.New("timed out")
	ErrEmptyOutput = errors.New("transform produced no output")
)

// ErrorKind classifies why an item failed
type ErrorKind string

const (
	KindPath      ErrorKind = "path"
	KindTransform ErrorKind = "transform"
	KindIO        ErrorKind = "io"
	KindCancelled ErrorKind = "cancelled"
	KindTimeout   ErrorKind = "timeout"
	KindPanic     ErrorKind = "panic"
)

// PanicError wraps a value recovered from a panicking transform
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("transform panicked: %v", e.Value)
}

// KindOf maps an item error onto its ErrorKind
func KindOf(err error) ErrorKind {
	var panicErr *PanicError
	var pathErr *pathguard.PathError
	var fsErr *fs.PathError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.As(err, &panicErr):
		return KindPanic
	case errors.As(err, &pathErr):
		return KindPath
	case errors.As(err, &fsErr):
		return KindIO
	default:
		return KindTransform
	}
}
