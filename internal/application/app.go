package application

import (
	"context"
	"os"

	"pixbatch/internal/batch"
	"pixbatch/internal/config"
	"pixbatch/internal/container"
	"pixbatch/internal/database"
	"pixbatch/internal/transport"
)

// ConfigEnv names an optional YAML or TOML config file
const ConfigEnv = "PIXBATCH_CONFIG"

// App is the object bound to the Wails frontend
type App struct {
	ctx       context.Context
	container *container.Container
	dialogs   transport.DialogHandler
	config    *config.Config
	singles   *batch.Tokens
}

func NewApp() *App {
	return &App{singles: batch.NewTokens()}
}

// NewWithContainer builds an App around an existing container, for the
// headless surfaces and tests
func NewWithContainer(ctx context.Context, c *container.Container, dialogs transport.DialogHandler) *App {
	return &App{
		ctx:       ctx,
		container: c,
		dialogs:   dialogs,
		config:    c.GetConfig(),
		singles:   batch.NewTokens(),
	}
}

func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	// Initialize configuration
	cfg, err := config.Load(os.Getenv(ConfigEnv))
	if err != nil {
		cfg = config.Default()
		cfg.Logger.Error("Failed to load configuration, using defaults", "error", err)
	}
	if err := cfg.Prepare(os.Stderr); err != nil {
		cfg.Logger.Error("Failed to prepare app data directory", "error", err)
		return
	}
	a.config = cfg

	// Initialize database
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Error("Failed to initialize database", "error", err)
		return
	}

	// Initialize dependency container
	a.container = container.New(cfg, db, transport.NewWailsSink(ctx))
	a.dialogs = transport.NewDialogsHandler(ctx)

	cfg.Logger.Info("Wails app initialized successfully")
	cfg.Logger.Info("Application configuration",
		"app_data_dir", cfg.AppDataDir,
		"database_path", cfg.DatabasePath,
		"workspace_dir", cfg.WorkspaceDir,
		"ghostscript_available", a.container.GetPDFService().IsGhostscriptAvailable())
}

func (a *App) OnShutdown(ctx context.Context) {
	if a.container == nil {
		return
	}
	a.CancelProcessing()
	if err := database.Close(a.container.GetDB()); err != nil {
		a.config.Logger.Warn("Failed to close database", "error", err)
	}
}

func (a *App) ready() error {
	if a.container == nil {
		return ErrNotReady
	}
	return nil
}

// CancelProcessing cancels every in-flight batch and single-file operation
// and returns how many were running
func (a *App) CancelProcessing() int {
	if a.ready() != nil {
		return 0
	}
	return a.container.GetBatchService().CancelAll() + a.singles.CancelAll()
}

// CancelBatch cancels one batch by id
func (a *App) CancelBatch(batchID string) bool {
	if a.ready() != nil {
		return false
	}
	return a.container.GetBatchService().Cancel(batchID)
}
