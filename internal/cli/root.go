// Package cli implements the pixbatch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"pixbatch/internal/application"
	"pixbatch/internal/config"
	"pixbatch/internal/container"
	"pixbatch/internal/database"
	"pixbatch/internal/progress"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	parallel   int
	plain      bool
}

// env is the wired backend one command runs against
type env struct {
	cfg         *config.Config
	db          *gorm.DB
	container   *container.Container
	broadcaster *progress.Broadcaster
}

func (e *env) Close() error {
	return database.Close(e.db)
}

// app returns the command boundary bound to ctx
func (e *env) app(ctx context.Context) *application.App {
	return application.NewWithContainer(ctx, e.container, nil)
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pixbatch",
		Short:         "pixbatch - batch image and PDF processing",
		Long:          "pixbatch compresses, converts, resizes, crops, watermarks, strips and renames images in parallel, and handles single-file PDF tasks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", os.Getenv(application.ConfigEnv), "YAML or TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")
	flags.IntVarP(&opts.parallel, "parallel", "p", 0, "maximum files processed at once (0 = CPU count)")
	flags.BoolVar(&opts.plain, "plain", false, "print progress lines instead of the interactive view")

	root.AddCommand(
		newRunCommand(opts),
		newPDFCommand(opts),
		newGenerateCommand(opts),
		newMetaCommand(opts),
		newOpsCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// Execute runs the command line and exits non-zero on error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides. quiet lowers
// the default log level so log lines do not interleave with command output.
func (o *rootOptions) loadConfig(quiet bool) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if quiet && o.configPath == "" {
		cfg.Log.Level = "warn"
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.parallel != 0 {
		cfg.MaxParallelism = o.parallel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads configuration and wires the backend. Progress of every batch is
// published on the returned broadcaster.
func (o *rootOptions) open(quiet bool, logOut io.Writer) (*env, error) {
	cfg, err := o.loadConfig(quiet)
	if err != nil {
		return nil, err
	}
	if err := cfg.Prepare(logOut); err != nil {
		return nil, fmt.Errorf("prepare app data directory: %w", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	broadcaster := progress.NewBroadcaster()
	c := container.New(cfg, db, broadcaster)
	if o.parallel != 0 {
		c.GetBatchService().SetMaxParallelism(o.parallel)
	}

	return &env{cfg: cfg, db: db, container: c, broadcaster: broadcaster}, nil
}

// absPath makes a command line path absolute. The backend rejects relative
// paths, so a failing Getwd leaves the path as given for it to report.
func absPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func absPaths(paths []string) []string {
	return lo.Map(paths, func(p string, _ int) string { return absPath(p) })
}
