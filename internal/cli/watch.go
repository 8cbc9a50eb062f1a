package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"pixbatch/internal/services"
	"pixbatch/internal/watch"
)

// pruneSchedule is when old batch history is dropped
const pruneSchedule = "@daily"

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var outputDir string
	pf := &paramFlags{}

	cmd := &cobra.Command{
		Use:   "watch <dir> <operation>",
		Short: "Process new files appearing in a folder",
		Long:  "Process new files appearing in a folder. Scheduled sweeps from the config file run alongside.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(false, os.Stderr)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			logger := e.cfg.Logger
			dir, operation := absPath(args[0]), args[1]

			op, err := e.container.GetRegistry().Lookup(operation)
			if err != nil {
				return err
			}
			params := pf.resolve(cmd.Flags())
			out, err := e.container.GetPreferencesService().ResolveOutputDir(absPath(outputDir), op.Subdir)
			if err != nil {
				return err
			}
			if out, err = filepath.Abs(out); err != nil {
				return err
			}

			scheduler, err := startScheduler(ctx, e)
			if err != nil {
				return err
			}
			defer scheduler.Stop()

			app := e.app(context.WithoutCancel(ctx))
			var mu sync.Mutex
			watcher, err := watch.NewWatcher(dir, watch.Options{
				Operation: operation,
				IgnoreDir: out,
				Debounce:  time.Duration(e.cfg.Watch.Debounce),
				Logger:    logger,
			}, func(files []string) {
				mu.Lock()
				defer mu.Unlock()
				response, err := app.RunBatch(services.BatchRequest{
					Operation:  operation,
					InputPaths: files,
					OutputDir:  out,
					Params:     params,
				})
				if err != nil {
					logger.Error("Watch batch failed", "error", err)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), outcomeStyle(string(response.Outcome)).Render(response.Message))
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}

			watcher.Start(ctx)
			logger.Info("Watching folder", "dir", dir, "operation", operation, "output_dir", out)

			<-ctx.Done()
			watcher.Stop()
			app.CancelProcessing()
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output folder (default: workspace subfolder)")
	pf.register(cmd.Flags())
	return cmd
}

// startScheduler registers the configured sweeps plus history pruning and
// starts them
func startScheduler(ctx context.Context, e *env) (*watch.Scheduler, error) {
	scheduler := watch.NewScheduler(e.container.GetBatchService(), e.cfg.Logger)
	prefs := e.container.GetPreferencesService()

	for _, sched := range e.cfg.Watch.Schedules {
		op, err := e.container.GetRegistry().Lookup(sched.Operation)
		if err != nil {
			return nil, fmt.Errorf("schedule for %s: %w", sched.Dir, err)
		}
		if sched.OutputDir, err = prefs.ResolveOutputDir(sched.OutputDir, op.Subdir); err != nil {
			return nil, err
		}
		if _, err := scheduler.AddSweep(sched); err != nil {
			return nil, err
		}
	}

	if keep := time.Duration(e.cfg.HistoryKeep); keep > 0 {
		if _, err := scheduler.AddPrune(pruneSchedule, e.container.GetHistoryService(), keep); err != nil {
			return nil, err
		}
	}

	scheduler.Start(ctx)
	return scheduler, nil
}
