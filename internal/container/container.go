package container

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pixbatch/internal/compression"
	"pixbatch/internal/config"
	"pixbatch/internal/operations"
	"pixbatch/internal/pathguard"
	"pixbatch/internal/progress"
	"pixbatch/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *slog.Logger

	// Services
	registry           *operations.Registry
	preferencesService *services.PreferencesService
	historyService     *services.HistoryService
	statsService       *services.StatsService
	batchService       *services.BatchService
	pdfService         *services.PDFService
}

// New creates a new dependency injection container. Batch progress goes to
// sink, which may be nil.
func New(cfg *config.Config, db *gorm.DB, sink progress.Sink) *Container {
	c := &Container{
		config: cfg,
		db:     db,
		logger: cfg.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.initServices(sink)
	return c
}

// initServices initializes all services with their dependencies
func (c *Container) initServices(sink progress.Sink) {
	guard := pathguard.New(c.config.AllowedRoot)
	compressor := compression.NewCompressor(c.config.GhostscriptPath, c.logger)

	c.registry = operations.NewDefaultRegistry(compressor)
	c.preferencesService = services.NewPreferencesService(c.db, c.config.WorkspaceDir)
	c.historyService = services.NewHistoryService(c.db)
	c.statsService = services.NewStatsService(c.historyService)
	c.pdfService = services.NewPDFService(compressor, guard, c.logger)

	c.batchService = services.NewBatchService(
		c.registry,
		guard,
		sink,
		c.historyService,
		c.statsService,
		services.BatchOptions{
			MaxParallelism: c.config.MaxParallelism,
			ItemTimeout:    time.Duration(c.config.ItemTimeout),
			ProgressBuffer: c.config.ProgressBuffer,
			Logger:         c.logger,
		},
	)

	// A stored preference overrides the configured pool size
	if prefs, err := c.preferencesService.GetPreferences(); err == nil && prefs.MaxParallelism > 0 {
		c.batchService.SetMaxParallelism(prefs.MaxParallelism)
	} else if err != nil {
		c.logger.Warn("Failed to load preferences", "error", err)
	}
}

// GetRegistry returns the operation registry
func (c *Container) GetRegistry() *operations.Registry {
	return c.registry
}

// GetBatchService returns the batch service
func (c *Container) GetBatchService() *services.BatchService {
	return c.batchService
}

// GetPDFService returns the single-file PDF and generator service
func (c *Container) GetPDFService() *services.PDFService {
	return c.pdfService
}

// GetPreferencesService returns the preferences service
func (c *Container) GetPreferencesService() *services.PreferencesService {
	return c.preferencesService
}

// GetHistoryService returns the batch history service
func (c *Container) GetHistoryService() *services.HistoryService {
	return c.historyService
}

// GetStatsService returns the statistics service
func (c *Container) GetStatsService() *services.StatsService {
	return c.statsService
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDB returns the database handle
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
