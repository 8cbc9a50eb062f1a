package pdfops

import "errors"

var (
	ErrNoPages        = errors.New("no valid page ranges provided")
	ErrInvalidRange   = errors.New("invalid page range")
	ErrNoInputs       = errors.New("no input files provided")
	ErrEmptyPassword  = errors.New("password cannot be empty")
	ErrNothingWritten = errors.New("no output was produced")
)
