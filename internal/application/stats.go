package application

import (
	"pixbatch/internal/models"
	"pixbatch/internal/operations"
	"pixbatch/internal/services"
)

func (a *App) GetStats() *services.AppStats {
	if a.ready() != nil {
		return &services.AppStats{}
	}
	stats := a.container.GetStatsService().GetStats()
	return &stats
}

func (a *App) GetBatchHistory(limit int) ([]models.BatchRecord, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return a.container.GetHistoryService().List(limit)
}

func (a *App) ListOperations() []operations.Info {
	if a.ready() != nil {
		return []operations.Info{}
	}
	return a.container.GetRegistry().Describe()
}

func (a *App) GetAppStatus() map[string]interface{} {
	if a.ready() != nil {
		return map[string]interface{}{
			"status":   "not_ready",
			"app_name": AppName,
		}
	}

	pdfService := a.container.GetPDFService()
	return map[string]interface{}{
		"status":                "running",
		"framework":             "Wails",
		"app_name":              AppName,
		"ghostscript_path":      pdfService.GetGhostscriptPath(),
		"ghostscript_available": pdfService.IsGhostscriptAvailable(),
		"pdf_engine":            pdfService.Compressor().Engine(),
		"workspace_directory":   a.config.WorkspaceDir,
		"active_batches":        a.container.GetBatchService().Active(),
	}
}
