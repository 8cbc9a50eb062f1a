package application

import (
	"pixbatch/internal/batch"
	"pixbatch/internal/operations"
	"pixbatch/internal/services"
)

// BatchResponse is what the frontend receives for a finished batch
type BatchResponse struct {
	Summary   batch.Summary `json:"summary"`
	Outcome   batch.Outcome `json:"outcome"`
	Message   string        `json:"message"`
	OutputDir string        `json:"output_dir"`
}

// RunBatch resolves the output directory and preference defaults, then runs
// the batch to completion
func (a *App) RunBatch(request services.BatchRequest) (*BatchResponse, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	op, err := a.container.GetRegistry().Lookup(request.Operation)
	if err != nil {
		return nil, err
	}

	prefsService := a.container.GetPreferencesService()
	prefs, err := prefsService.GetPreferences()
	if err != nil {
		return nil, NewPreferencesError("load", err)
	}
	request.Params = withDefaults(op.Name, request.Params, prefs.DefaultQuality, prefs.DefaultConvertFormat, prefs.DefaultPDFLevel)

	request.OutputDir, err = prefsService.ResolveOutputDir(request.OutputDir, op.Subdir)
	if err != nil {
		return nil, err
	}

	summary, err := a.container.GetBatchService().Run(a.ctx, request)
	if err != nil {
		return nil, err
	}

	response := &BatchResponse{
		Summary:   summary,
		Outcome:   summary.Outcome(),
		Message:   summary.Message(),
		OutputDir: request.OutputDir,
	}

	if prefs.OpenAfterProcess && summary.Completed > 0 && a.dialogs != nil {
		if err := a.dialogs.OpenFile(request.OutputDir); err != nil {
			a.config.Logger.Warn("Failed to open output folder", "dir", request.OutputDir, "error", err)
		}
	}
	return response, nil
}

// withDefaults fills parameters the caller left empty from preferences
func withDefaults(operation string, p operations.Params, quality int, format, level string) operations.Params {
	switch operation {
	case "compress_webp":
		if p.Quality == 0 {
			p.Quality = quality
		}
	case "convert_images":
		if p.Format == "" {
			p.Format = format
		}
		if p.Quality == 0 {
			p.Quality = quality
		}
	case "compress_pdf":
		if p.Level == "" {
			p.Level = level
		}
	}
	return p
}

func (a *App) CompressWebp(inputPaths []string, quality int, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "compress_webp",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Quality: quality},
	})
}

func (a *App) ConvertImages(inputPaths []string, format string, quality int, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "convert_images",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Format: format, Quality: quality},
	})
}

func (a *App) ResizeImages(inputPaths []string, mode string, width, height, percentage int, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "resize_images",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Mode: mode, Width: width, Height: height, Percentage: percentage},
	})
}

func (a *App) CropImages(inputPaths []string, ratio, anchor string, width, height int, cropX, cropY *int, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "crop_images",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params: operations.Params{
			Ratio:  ratio,
			Anchor: anchor,
			Width:  width,
			Height: height,
			CropX:  cropX,
			CropY:  cropY,
		},
	})
}

func (a *App) AddWatermark(inputPaths []string, text, position string, opacity int, fontSize float64, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "add_watermark",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Text: text, Position: position, Opacity: opacity, FontSize: fontSize},
	})
}

func (a *App) StripMetadata(inputPaths []string, preserveICC bool, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "strip_metadata",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{PreserveICC: preserveICC},
	})
}

func (a *App) OptimizeImages(inputPaths []string, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "optimize_images",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
	})
}

func (a *App) BulkRename(inputPaths []string, pattern string, startIndex int, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "bulk_rename",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Pattern: pattern, StartIndex: startIndex},
	})
}

func (a *App) CompressPDFs(inputPaths []string, level string, outputDir string) (*BatchResponse, error) {
	return a.RunBatch(services.BatchRequest{
		Operation:  "compress_pdf",
		InputPaths: inputPaths,
		OutputDir:  outputDir,
		Params:     operations.Params{Level: level},
	})
}
