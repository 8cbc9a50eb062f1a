package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"pixbatch/internal/common"
)

// Options configure an Executor
type Options struct {
	// MaxParallelism caps concurrent transforms. Zero means DefaultParallelism.
	MaxParallelism int
	// ItemTimeout abandons a transform that runs longer. Zero disables it.
	ItemTimeout time.Duration
	Logger      *slog.Logger
}

// Executor runs work items through a transform on a bounded ants pool
type Executor struct {
	maxParallelism int
	itemTimeout    time.Duration
	logger         *slog.Logger
}

// NewExecutor creates an executor
func NewExecutor(opts Options) *Executor {
	parallelism := opts.MaxParallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		maxParallelism: parallelism,
		itemTimeout:    opts.ItemTimeout,
		logger:         logger,
	}
}

// DefaultParallelism uses available CPU cores, capped for I/O heavy transforms
func DefaultParallelism() int {
	maxConcurrency := runtime.NumCPU()
	if maxConcurrency > common.MaxConcurrencyLimit {
		maxConcurrency = common.MaxConcurrencyLimit
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return maxConcurrency
}

// MaxParallelism returns the configured pool size
func (e *Executor) MaxParallelism() int {
	return e.maxParallelism
}

// Stream dispatches items and emits one ItemResult per item in completion
// order. The channel is closed after the last result. Once token is cancelled
// (or ctx is done) no further transform is started and the remaining items
// resolve as cancelled.
func (e *Executor) Stream(ctx context.Context, items []WorkItem, transform Transform, token *Token) (<-chan ItemResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if transform == nil {
		return nil, ErrNoTransform
	}
	if token == nil {
		token = NewToken()
	}

	poolSize := e.maxParallelism
	if poolSize > len(items) {
		poolSize = len(items)
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	stopOnCancel := context.AfterFunc(token.Context(), stop)

	results := make(chan ItemResult, len(items))

	go func() {
		defer close(results)
		defer stop()
		defer stopOnCancel()
		defer pool.Release()

		var wg sync.WaitGroup
		for _, item := range items {
			if isCancelled(runCtx, token) {
				results <- cancelledResult(item)
				continue
			}

			wg.Add(1)
			work := item
			// Submit blocks while every worker is busy, so the cancellation
			// check above always runs right before a real dispatch.
			submitErr := pool.Submit(func() {
				defer wg.Done()
				results <- e.runItem(runCtx, token, work, transform)
			})
			if submitErr != nil {
				wg.Done()
				e.logger.Error("Failed to submit work item", "input", work.InputPath, "error", submitErr)
				results <- failedResult(work, fmt.Errorf("failed to submit work item: %w", submitErr))
			}
		}

		wg.Wait()
	}()

	return results, nil
}

// Run is Stream collected into a slice, still in completion order
func (e *Executor) Run(ctx context.Context, items []WorkItem, transform Transform, token *Token) ([]ItemResult, error) {
	stream, err := e.Stream(ctx, items, transform, token)
	if err != nil {
		return nil, err
	}

	results := make([]ItemResult, 0, len(items))
	for result := range stream {
		results = append(results, result)
	}
	return results, nil
}

func (e *Executor) runItem(ctx context.Context, token *Token, item WorkItem, transform Transform) ItemResult {
	if isCancelled(ctx, token) {
		return cancelledResult(item)
	}

	started := time.Now()
	result := ItemResult{
		ID:        item.ID,
		InputPath: item.InputPath,
		InputSize: common.FileSize(item.Source()),
	}

	output, err := e.invoke(ctx, item, transform)
	result.DurationMs = time.Since(started).Milliseconds()
	if err == nil {
		if output.Path == "" {
			output.Path = item.OutputPath
		}
		result.OutputSize = common.FileSize(output.Path)
		if result.OutputSize == 0 {
			err = fmt.Errorf("%w: %s", ErrEmptyOutput, output.Path)
		}
	}

	if err != nil {
		kind := KindOf(err)
		result.ErrorKind = kind
		result.Error = err.Error()
		result.OutputSize = 0
		if kind == KindCancelled {
			result.Cancelled = true
			result.Error = ErrCancelled.Error()
		}
		if kind == KindPanic {
			e.logger.Error("Transform panicked", "input", item.InputPath, "error", err)
		} else {
			e.logger.Warn("Item failed", "input", item.InputPath, "kind", kind, "error", err)
		}
		return result
	}

	result.Success = true
	result.OutputPath = output.Path
	result.InputDimensions = output.InputDimensions
	result.OutputDimensions = output.OutputDimensions
	return result
}

func (e *Executor) invoke(ctx context.Context, item WorkItem, transform Transform) (Output, error) {
	if e.itemTimeout <= 0 {
		return safeCall(ctx, item, transform)
	}

	itemCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		output Output
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		output, err := safeCall(itemCtx, item, transform)
		done <- outcome{output: output, err: err}
	}()

	timer := time.NewTimer(e.itemTimeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.output, o.err
	case <-timer.C:
		e.logger.Warn("Abandoning transform after timeout", "input", item.InputPath, "timeout", e.itemTimeout)
		return Output{}, fmt.Errorf("%w after %s", ErrTimeout, e.itemTimeout)
	}
}

func safeCall(ctx context.Context, item WorkItem, transform Transform) (output Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return transform(ctx, item)
}

func isCancelled(ctx context.Context, token *Token) bool {
	return token.IsCancelled() || ctx.Err() != nil
}

func cancelledResult(item WorkItem) ItemResult {
	return ItemResult{
		ID:        item.ID,
		InputPath: item.InputPath,
		Error:     ErrCancelled.Error(),
		ErrorKind: KindCancelled,
		Cancelled: true,
		InputSize: common.FileSize(item.Source()),
	}
}

func failedResult(item WorkItem, err error) ItemResult {
	return ItemResult{
		ID:        item.ID,
		InputPath: item.InputPath,
		Error:     err.Error(),
		ErrorKind: KindOf(err),
		InputSize: common.FileSize(item.Source()),
	}
}
