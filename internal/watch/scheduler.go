package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"pixbatch/internal/batch"
	"pixbatch/internal/config"
	"pixbatch/internal/services"
)

// Runner runs one batch to completion
type Runner interface {
	Run(ctx context.Context, req services.BatchRequest) (batch.Summary, error)
}

// Pruner drops batch history older than keep
type Pruner interface {
	Prune(keep time.Duration) (int64, error)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses a five field cron expression or a descriptor like @daily
func ParseCron(expr string) (cron.Schedule, error) {
	return cronParser.Parse(expr)
}

// Scheduler runs folder sweeps and history pruning on cron expressions
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
	ctx    context.Context
}

// NewScheduler creates a stopped scheduler
func NewScheduler(runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		logger: logger,
		ctx:    context.Background(),
	}
}

// AddSweep runs sched.Operation over every accepted file in sched.Dir
func (s *Scheduler) AddSweep(sched config.Schedule) (cron.EntryID, error) {
	if _, err := ParseCron(sched.Cron); err != nil {
		return 0, fmt.Errorf("invalid cron expression %q: %w", sched.Cron, err)
	}
	return s.cron.AddFunc(sched.Cron, func() {
		if _, err := s.Sweep(s.ctx, sched); err != nil {
			s.logger.Error("Scheduled sweep failed", "dir", sched.Dir, "operation", sched.Operation, "error", err)
		}
	})
}

// AddPrune drops history older than keep on expr
func (s *Scheduler) AddPrune(expr string, pruner Pruner, keep time.Duration) (cron.EntryID, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("history retention must be positive")
	}
	return s.cron.AddFunc(expr, func() {
		n, err := pruner.Prune(keep)
		if err != nil {
			s.logger.Error("History prune failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info("Pruned batch history", "records", n)
		}
	})
}

// Sweep runs one pass over the schedule's folder. An empty folder is not a
// batch and returns a zero summary.
func (s *Scheduler) Sweep(ctx context.Context, sched config.Schedule) (batch.Summary, error) {
	inputs, err := ListInputs(sched.Dir, sched.Operation)
	if err != nil {
		return batch.Summary{}, err
	}
	if len(inputs) == 0 {
		s.logger.Debug("Nothing to sweep", "dir", sched.Dir)
		return batch.Summary{}, nil
	}

	summary, err := s.runner.Run(ctx, services.BatchRequest{
		Operation:  sched.Operation,
		InputPaths: inputs,
		OutputDir:  sched.OutputDir,
		Params:     sched.Params,
	})
	if err != nil {
		return summary, err
	}
	s.logger.Info("Sweep finished",
		"dir", sched.Dir,
		"operation", sched.Operation,
		"outcome", summary.Outcome(),
		"message", summary.Message())
	return summary, nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs jobs in the background until Stop. Sweeps run under ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
