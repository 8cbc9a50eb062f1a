package pathguard

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath     = errors.New("path is empty")
	ErrRelativePath  = errors.New("path is not absolute")
	ErrTraversal     = errors.New("path contains a parent directory segment")
	ErrOutsideRoot   = errors.New("path is outside the allowed root")
	ErrSymlinkEscape = errors.New("symlink resolves outside the allowed root")
	ErrInvalidName   = errors.New("invalid output file name")
)

// PathError reports a path rejected by the validator
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func newPathError(path string, err error) *PathError {
	return &PathError{Path: path, Err: err}
}
