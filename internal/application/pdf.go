package application

import (
	"context"
	"path/filepath"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/generate"
	"pixbatch/internal/metadata"
)

// runSingle runs fn under a token that CancelProcessing reaches. outputDir
// is resolved below the workspace when empty.
func (a *App) runSingle(outputDir, subdir string, fn func(ctx context.Context, dir string) batch.SingleResult) batch.SingleResult {
	if err := a.ready(); err != nil {
		return batch.FailedSingle(err)
	}

	dir, err := a.container.GetPreferencesService().ResolveOutputDir(outputDir, subdir)
	if err != nil {
		return batch.FailedSingle(err)
	}

	id := common.GenerateUUID()
	token := a.singles.New(id)
	defer a.singles.Release(id)

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	stop := context.AfterFunc(token.Context(), cancel)
	defer stop()

	return fn(ctx, dir)
}

// outputFile returns outputPath, or name inside the resolved default dir
func (a *App) outputFile(outputPath, name string, fn func(ctx context.Context, dst string) batch.SingleResult) batch.SingleResult {
	dir := ""
	if outputPath != "" {
		dir = filepath.Dir(outputPath)
		name = filepath.Base(outputPath)
	}
	return a.runSingle(dir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return fn(ctx, filepath.Join(dir, name))
	})
}

func (a *App) CompressPDF(pdfPath string, quality int, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().CompressPDF(ctx, pdfPath, quality, dir)
	})
}

func (a *App) ProtectPDF(pdfPath, password, ownerPassword, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().ProtectPDF(ctx, pdfPath, password, ownerPassword, dir)
	})
}

func (a *App) UnlockPDF(pdfPath, password, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().UnlockPDF(ctx, pdfPath, password, dir)
	})
}

func (a *App) SplitPDF(pdfPath, ranges, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().SplitPDF(ctx, pdfPath, ranges, dir)
	})
}

func (a *App) MergePDFs(pdfPaths []string, outputPath string) batch.SingleResult {
	return a.outputFile(outputPath, DefaultMergedName, func(ctx context.Context, dst string) batch.SingleResult {
		return a.container.GetPDFService().MergePDFs(ctx, pdfPaths, dst)
	})
}

func (a *App) ImagesToPDF(imagePaths []string, outputPath string) batch.SingleResult {
	return a.outputFile(outputPath, DefaultImagesName, func(ctx context.Context, dst string) batch.SingleResult {
		return a.container.GetPDFService().ImagesToPDF(ctx, imagePaths, dst)
	})
}

func (a *App) ExtractPDFImages(pdfPath, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, PDFSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().ExtractImages(ctx, pdfPath, dir)
	})
}

func (a *App) GenerateFavicons(imagePath, outputDir string) batch.SingleResult {
	return a.runSingle(outputDir, GeneratedSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().GenerateFavicons(ctx, imagePath, dir)
	})
}

func (a *App) CreateGIF(imagePaths []string, delayMs, loopCount int, outputDir string) batch.SingleResult {
	opts := generate.GIFOptions{DelayMs: delayMs, LoopCount: loopCount}
	return a.runSingle(outputDir, GeneratedSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().CreateGIF(ctx, imagePaths, opts, dir)
	})
}

func (a *App) GenerateSpritesheet(imagePaths []string, columns, padding int, outputDir string) batch.SingleResult {
	opts := generate.SpriteOptions{Columns: columns, Padding: padding}
	return a.runSingle(outputDir, GeneratedSubdir, func(ctx context.Context, dir string) batch.SingleResult {
		return a.container.GetPDFService().GenerateSpritesheet(ctx, imagePaths, opts, dir)
	})
}

func (a *App) ReadMetadata(filePath string) (*metadata.ImageMetadata, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	return a.container.GetPDFService().ReadMetadata(filePath)
}
