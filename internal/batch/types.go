package batch

import (
	"context"
	"time"
)

// Dimensions of an image in pixels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WorkItem is a single file scheduled for processing. OutputPath is planned
// before dispatch so names stay deterministic under concurrency.
//
// InputPath is the path as the caller submitted it and is what results are
// keyed by. SourcePath is the validated path the transform reads; when empty
// the transform reads InputPath.
type WorkItem struct {
	ID         string
	Index      int
	InputPath  string
	SourcePath string
	OutputPath string
}

// Source returns the path a transform should read.
func (w WorkItem) Source() string {
	if w.SourcePath != "" {
		return w.SourcePath
	}
	return w.InputPath
}

// Output describes what a transform wrote
type Output struct {
	Path             string
	InputDimensions  *Dimensions
	OutputDimensions *Dimensions
}

// Transform processes one work item. Implementations read only the input path,
// write only the output path and must honour ctx at their own checkpoints.
type Transform func(ctx context.Context, item WorkItem) (Output, error)

// ItemResult is the outcome of exactly one WorkItem
type ItemResult struct {
	ID               string      `json:"id"`
	InputPath        string      `json:"input_path"`
	OutputPath       string      `json:"output_path"`
	Success          bool        `json:"success"`
	Error            string      `json:"error,omitempty"`
	ErrorKind        ErrorKind   `json:"error_kind,omitempty"`
	Cancelled        bool        `json:"cancelled,omitempty"`
	InputSize        int64       `json:"input_size"`
	OutputSize       int64       `json:"output_size"`
	InputDimensions  *Dimensions `json:"input_dimensions,omitempty"`
	OutputDimensions *Dimensions `json:"output_dimensions,omitempty"`
	DurationMs       int64       `json:"duration_ms"`
}

// Outcome is the three-way classification of a finished batch
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Summary is the aggregated result of a batch
type Summary struct {
	BatchID     string       `json:"batch_id"`
	Operation   string       `json:"operation"`
	Completed   int          `json:"completed"`
	Failed      int          `json:"failed"`
	Cancelled   int          `json:"cancelled"`
	Total       int          `json:"total"`
	InputBytes  int64        `json:"input_bytes"`
	OutputBytes int64        `json:"output_bytes"`
	Results     []ItemResult `json:"results"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// SingleResult is the outcome of a single-file operation such as a PDF split
// or a favicon bundle. Success requires no errors and at least one output.
type SingleResult struct {
	OutputPath  string   `json:"output_path"`
	OutputFiles []string `json:"output_files,omitempty"`
	Success     bool     `json:"success"`
	Errors      []string `json:"errors"`
}
