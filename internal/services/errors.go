package services

import "errors"

// Service error types
var (
	ErrNoInputs         = errors.New("no input files provided")
	ErrOutputDir        = errors.New("output directory unavailable")
	ErrBatchNotFound    = errors.New("batch not found")
	ErrBatchRunning     = errors.New("batch still running")
	ErrWorkspaceMissing = errors.New("workspace folder not set")
)
