package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/operations"
	"pixbatch/internal/pathguard"
	"pixbatch/internal/progress"
)

// BatchRequest asks for one operation over a list of files
type BatchRequest struct {
	Operation  string            `json:"operation"`
	InputPaths []string          `json:"inputPaths"`
	OutputDir  string            `json:"outputDir"`
	Params     operations.Params `json:"params"`
}

// BatchOptions configure a BatchService
type BatchOptions struct {
	MaxParallelism int
	ItemTimeout    time.Duration
	ProgressBuffer int
	Logger         *slog.Logger
}

// Handle tracks a submitted batch
type Handle struct {
	ID        string
	Operation string
	OutputDir string
	Total     int

	done    chan struct{}
	summary batch.Summary
}

// Done is closed once the summary is available
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the batch finished or ctx is done
func (h *Handle) Wait(ctx context.Context) (batch.Summary, error) {
	select {
	case <-h.done:
		return h.summary, nil
	case <-ctx.Done():
		return batch.Summary{}, ctx.Err()
	}
}

// Summary returns the summary if the batch already finished
func (h *Handle) Summary() (batch.Summary, bool) {
	select {
	case <-h.done:
		return h.summary, true
	default:
		return batch.Summary{}, false
	}
}

// BatchService validates batch requests, plans output names and runs the
// items on the executor
type BatchService struct {
	registry *operations.Registry
	guard    *pathguard.Guard
	tokens   *batch.Tokens
	sink     progress.Sink
	history  *HistoryService
	stats    *StatsService
	logger   *slog.Logger

	itemTimeout    time.Duration
	progressBuffer int
	parallelism    atomic.Int64
	now            func() time.Time

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewBatchService creates a batch service. history and stats may be nil.
func NewBatchService(registry *operations.Registry, guard *pathguard.Guard, sink progress.Sink, history *HistoryService, stats *StatsService, opts BatchOptions) *BatchService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if guard == nil {
		guard = pathguard.New("")
	}
	s := &BatchService{
		registry:       registry,
		guard:          guard,
		tokens:         batch.NewTokens(),
		sink:           sink,
		history:        history,
		stats:          stats,
		logger:         logger,
		itemTimeout:    opts.ItemTimeout,
		progressBuffer: opts.ProgressBuffer,
		now:            time.Now,
		handles:        make(map[string]*Handle),
	}
	s.parallelism.Store(int64(opts.MaxParallelism))
	return s
}

// SetMaxParallelism changes the pool size of batches submitted afterwards.
// Zero restores the CPU based default.
func (s *BatchService) SetMaxParallelism(n int) {
	if n < 0 {
		n = 0
	}
	s.parallelism.Store(int64(n))
}

// Operations lists the registered operations
func (s *BatchService) Operations() []operations.Info {
	return s.registry.Describe()
}

// Run submits req and waits for its summary, releasing the handle after
func (s *BatchService) Run(ctx context.Context, req BatchRequest) (batch.Summary, error) {
	handle, err := s.Submit(ctx, req)
	if err != nil {
		return batch.Summary{}, err
	}
	summary, err := handle.Wait(ctx)
	if err != nil {
		s.Cancel(handle.ID)
		<-handle.Done()
		summary, _ = handle.Summary()
	}
	s.forget(handle.ID)
	return summary, err
}

// Submit validates req, plans every work item and starts the batch on its
// own goroutine. Precondition failures return an error before any work.
// The batch outlives ctx; stop it through Cancel.
func (s *BatchService) Submit(ctx context.Context, req BatchRequest) (*Handle, error) {
	op, err := s.registry.Lookup(req.Operation)
	if err != nil {
		return nil, err
	}
	if err := op.CheckParams(req.Params); err != nil {
		return nil, err
	}

	inputs := lo.Uniq(req.InputPaths)
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	outputDir, err := s.prepareOutputDir(req.OutputDir)
	if err != nil {
		return nil, err
	}

	batchID := common.GenerateUUID()
	items, rejected := s.plan(op, inputs, outputDir, req.Params)

	handle := &Handle{
		ID:        batchID,
		Operation: op.Name,
		OutputDir: outputDir,
		Total:     len(inputs),
		done:      make(chan struct{}),
	}
	token := s.tokens.New(batchID)

	s.mu.Lock()
	s.handles[batchID] = handle
	s.mu.Unlock()

	s.logger.Info("Starting batch",
		"batch_id", batchID,
		"operation", op.Name,
		"files", len(inputs),
		"rejected", len(rejected),
		"output_dir", outputDir)

	go s.execute(context.WithoutCancel(ctx), handle, token, op.Transform(req.Params), items, rejected)

	return handle, nil
}

// Get returns the handle of a submitted batch that was not released yet
func (s *BatchService) Get(batchID string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, ok := s.handles[batchID]
	return handle, ok
}

// Release forgets a finished batch
func (s *BatchService) Release(batchID string) error {
	handle, ok := s.Get(batchID)
	if !ok {
		return ErrBatchNotFound
	}
	if _, finished := handle.Summary(); !finished {
		return ErrBatchRunning
	}
	s.forget(batchID)
	return nil
}

// Cancel cancels one in-flight batch
func (s *BatchService) Cancel(batchID string) bool {
	return s.tokens.Cancel(batchID)
}

// CancelAll cancels every in-flight batch and returns how many there were
func (s *BatchService) CancelAll() int {
	n := s.tokens.CancelAll()
	if n > 0 {
		s.logger.Info("Cancelling batches", "count", n)
	}
	return n
}

// Active lists the ids of batches still running
func (s *BatchService) Active() []string {
	return s.tokens.Active()
}

func (s *BatchService) prepareOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no output directory given", ErrOutputDir)
	}
	canonical, err := s.guard.Input(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if err := common.EnsureDir(canonical); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	return canonical, nil
}

// plan validates every input and assigns its output path. Inputs that fail
// validation or naming come back as already failed results. Items keep the
// path the caller submitted; the validated path is only used for reading.
func (s *BatchService) plan(op operations.Operation, inputs []string, outputDir string, params operations.Params) ([]batch.WorkItem, []batch.ItemResult) {
	now := s.now()
	items := make([]batch.WorkItem, 0, len(inputs))
	var rejected []batch.ItemResult

	canonical := make([]string, len(inputs))
	errs := make([]error, len(inputs))
	for i, input := range inputs {
		canonical[i], errs[i] = s.guard.Input(input)
	}

	// Inputs are reserved so an output never replaces a file being read
	planner := newNamePlanner(lo.Filter(canonical, func(p string, _ int) bool { return p != "" })...)

	for i, input := range inputs {
		id := common.GenerateUUID()
		if errs[i] != nil {
			rejected = append(rejected, rejectedResult(id, input, errs[i]))
			continue
		}

		name, err := op.OutputName(input, params, operations.Sequence{Index: i, Now: now})
		if err != nil {
			rejected = append(rejected, rejectedResult(id, input, operations.NewTransformError(op.Name, input, err)))
			continue
		}
		outputPath, err := s.guard.Output(outputDir, name)
		if err != nil {
			rejected = append(rejected, rejectedResult(id, input, err))
			continue
		}

		items = append(items, batch.WorkItem{
			ID:         id,
			Index:      i,
			InputPath:  input,
			SourcePath: canonical[i],
			OutputPath: planner.Claim(outputPath),
		})
	}
	return items, rejected
}

func (s *BatchService) execute(ctx context.Context, handle *Handle, token *batch.Token, transform batch.Transform, items []batch.WorkItem, rejected []batch.ItemResult) {
	started := s.now()
	reporter := progress.NewReporter(handle.ID, handle.Operation, handle.Total, s.sink, s.progressBuffer, s.logger)

	results := make([]batch.ItemResult, 0, handle.Total)
	for _, result := range rejected {
		results = append(results, result)
		reporter.OnItemComplete(result.InputPath)
	}

	if len(items) > 0 {
		executor := batch.NewExecutor(batch.Options{
			MaxParallelism: int(s.parallelism.Load()),
			ItemTimeout:    s.itemTimeout,
			Logger:         s.logger,
		})
		stream, err := executor.Stream(ctx, items, transform, token)
		if err != nil {
			s.logger.Error("Failed to start batch", "batch_id", handle.ID, "error", err)
			for _, item := range items {
				results = append(results, rejectedResult(item.ID, item.InputPath, err))
				reporter.OnItemComplete(item.InputPath)
			}
		} else {
			for result := range stream {
				results = append(results, result)
				reporter.OnItemComplete(result.InputPath)
			}
		}
	}

	reporter.Finish()
	s.tokens.Release(handle.ID)

	summary := batch.Aggregate(handle.ID, handle.Operation, results, handle.Total)
	summary.StartedAt = started

	s.logger.Info("Batch finished",
		"batch_id", handle.ID,
		"outcome", summary.Outcome(),
		"completed", summary.Completed,
		"failed", summary.Failed,
		"cancelled", summary.Cancelled,
		"duration", summary.FinishedAt.Sub(started).Round(time.Millisecond))

	if s.history != nil {
		if err := s.history.Record(summary, handle.OutputDir); err != nil {
			s.logger.Warn("Failed to record batch history", "batch_id", handle.ID, "error", err)
		}
	}
	if s.stats != nil {
		s.stats.Record(summary)
	}

	handle.summary = summary
	close(handle.done)
}

func (s *BatchService) forget(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, batchID)
}

func rejectedResult(id, input string, err error) batch.ItemResult {
	return batch.ItemResult{
		ID:        id,
		InputPath: input,
		Error:     err.Error(),
		ErrorKind: batch.KindOf(err),
		InputSize: common.FileSize(input),
	}
}
