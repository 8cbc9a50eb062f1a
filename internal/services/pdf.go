package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/compression"
	"pixbatch/internal/generate"
	"pixbatch/internal/metadata"
	"pixbatch/internal/pathguard"
	"pixbatch/internal/pdfops"
)

// PDFService runs the single-file PDF operations and the generators. Every
// method reports through a SingleResult instead of an error.
type PDFService struct {
	compressor *compression.Compressor
	guard      *pathguard.Guard
	logger     *slog.Logger
}

// NewPDFService creates a new PDF service
func NewPDFService(compressor *compression.Compressor, guard *pathguard.Guard, logger *slog.Logger) *PDFService {
	if guard == nil {
		guard = pathguard.New("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFService{compressor: compressor, guard: guard, logger: logger}
}

// Compressor exposes the PDF compressor for batch registration
func (s *PDFService) Compressor() *compression.Compressor {
	return s.compressor
}

// IsGhostscriptAvailable reports whether Ghostscript drives compression
func (s *PDFService) IsGhostscriptAvailable() bool {
	return s.compressor.IsAvailable()
}

// GetGhostscriptPath returns the Ghostscript path, empty when missing
func (s *PDFService) GetGhostscriptPath() string {
	return s.compressor.GetGhostscriptPath()
}

// CompressPDF writes <stem>-compressed.pdf using the level derived from quality
func (s *PDFService) CompressPDF(ctx context.Context, input string, quality int, outputDir string) batch.SingleResult {
	if quality < 1 || quality > 100 {
		return batch.FailedSingle(fmt.Errorf("quality must be between 1 and 100, got %d", quality))
	}
	src, dst, err := s.singlePaths(input, outputDir, common.FileStem(input)+"-compressed.pdf")
	if err != nil {
		return batch.FailedSingle(err)
	}

	level := compression.LevelForQuality(quality)
	s.logger.Info("Compressing PDF", "input", src, "level", level, "engine", s.compressor.Engine())
	err = s.compressor.Compress(ctx, src, dst, level)
	return s.result("compress", dst, nil, err)
}

// ProtectPDF writes <stem>-protected.pdf encrypted with AES-256. An empty
// owner password reuses the user password.
func (s *PDFService) ProtectPDF(ctx context.Context, input, userPassword, ownerPassword, outputDir string) batch.SingleResult {
	src, dst, err := s.singlePaths(input, outputDir, common.FileStem(input)+"-protected.pdf")
	if err != nil {
		return batch.FailedSingle(err)
	}
	err = pdfops.Protect(ctx, src, dst, userPassword, ownerPassword)
	return s.result("protect", dst, nil, err)
}

// UnlockPDF writes <stem>-unlocked.pdf without encryption
func (s *PDFService) UnlockPDF(ctx context.Context, input, password, outputDir string) batch.SingleResult {
	src, dst, err := s.singlePaths(input, outputDir, common.FileStem(input)+"-unlocked.pdf")
	if err != nil {
		return batch.FailedSingle(err)
	}
	err = pdfops.Unlock(ctx, src, dst, password)
	return s.result("unlock", dst, nil, err)
}

// SplitPDF writes one file per page range, e.g. "1-3, 5, 7-end"
func (s *PDFService) SplitPDF(ctx context.Context, input, ranges, outputDir string) batch.SingleResult {
	src, dir, err := s.inputAndDir(input, outputDir)
	if err != nil {
		return batch.FailedSingle(err)
	}
	files, err := pdfops.Split(ctx, src, dir, ranges)
	return s.result("split", "", files, err)
}

// MergePDFs concatenates inputs in order into outputPath
func (s *PDFService) MergePDFs(ctx context.Context, inputs []string, outputPath string) batch.SingleResult {
	srcs, err := s.inputs(inputs)
	if err != nil {
		return batch.FailedSingle(err)
	}
	dst, err := s.outputFile(outputPath)
	if err != nil {
		return batch.FailedSingle(err)
	}
	err = pdfops.Merge(ctx, srcs, dst)
	return s.result("merge", dst, nil, err)
}

// ImagesToPDF places each image on its own page of outputPath. Images that
// cannot be read are reported while the rest still make it into the PDF.
func (s *PDFService) ImagesToPDF(ctx context.Context, images []string, outputPath string) batch.SingleResult {
	srcs, err := s.inputs(images)
	if err != nil {
		return batch.FailedSingle(err)
	}
	dst, err := s.outputFile(outputPath)
	if err != nil {
		return batch.FailedSingle(err)
	}
	pages, err := pdfops.ImagesToPDF(ctx, srcs, dst)
	if pages == 0 {
		return batch.FailedSingle(err)
	}
	return s.result("images to pdf", dst, nil, err)
}

// ExtractImages writes the embedded images of input as <stem>_N.<ext>
func (s *PDFService) ExtractImages(ctx context.Context, input, outputDir string) batch.SingleResult {
	src, dir, err := s.inputAndDir(input, outputDir)
	if err != nil {
		return batch.FailedSingle(err)
	}
	files, err := pdfops.ExtractImages(ctx, src, dir)
	return s.result("extract images", "", files, err)
}

// GenerateFavicons writes <stem>-favicons.zip
func (s *PDFService) GenerateFavicons(ctx context.Context, input, outputDir string) batch.SingleResult {
	src, dir, err := s.inputAndDir(input, outputDir)
	if err != nil {
		return batch.FailedSingle(err)
	}
	favicons, err := generate.Favicons(ctx, src, dir)
	if err != nil {
		return s.result("favicons", "", nil, err)
	}
	return s.result("favicons", favicons.ZipPath, favicons.Files, nil)
}

// CreateGIF writes animation.gif from the frames in order
func (s *PDFService) CreateGIF(ctx context.Context, frames []string, opts generate.GIFOptions, outputDir string) batch.SingleResult {
	srcs, err := s.inputs(frames)
	if err != nil {
		return batch.FailedSingle(err)
	}
	dir, err := s.outputDir(outputDir)
	if err != nil {
		return batch.FailedSingle(err)
	}
	gif, err := generate.CreateGIF(ctx, srcs, opts, dir)
	return s.result("gif", gif.OutputPath, nil, err)
}

// GenerateSpritesheet writes spritesheet.png and its JSON atlas
func (s *PDFService) GenerateSpritesheet(ctx context.Context, images []string, opts generate.SpriteOptions, outputDir string) batch.SingleResult {
	srcs, err := s.inputs(images)
	if err != nil {
		return batch.FailedSingle(err)
	}
	dir, err := s.outputDir(outputDir)
	if err != nil {
		return batch.FailedSingle(err)
	}
	sheet, err := generate.Spritesheet(ctx, srcs, opts, dir)
	var files []string
	if sheet.ImagePath != "" {
		files = []string{sheet.ImagePath, sheet.AtlasPath}
	}
	return s.result("spritesheet", sheet.ImagePath, files, err)
}

// ReadMetadata reads dimensions, format and EXIF tags of an image
func (s *PDFService) ReadMetadata(path string) (*metadata.ImageMetadata, error) {
	src, err := s.guard.Input(path)
	if err != nil {
		return nil, err
	}
	return metadata.Read(src)
}

func (s *PDFService) result(op, outputPath string, files []string, err error) batch.SingleResult {
	result := batch.NewSingleResult(outputPath, files, err)
	if err != nil {
		s.logger.Warn("PDF operation reported errors", "operation", op, "error", err)
	}
	return result
}

func (s *PDFService) singlePaths(input, outputDir, name string) (string, string, error) {
	src, dir, err := s.inputAndDir(input, outputDir)
	if err != nil {
		return "", "", err
	}
	dst, err := s.guard.Output(dir, name)
	if err != nil {
		return "", "", err
	}
	return src, dst, nil
}

func (s *PDFService) inputAndDir(input, outputDir string) (string, string, error) {
	src, err := s.guard.Input(input)
	if err != nil {
		return "", "", err
	}
	dir, err := s.outputDir(outputDir)
	if err != nil {
		return "", "", err
	}
	return src, dir, nil
}

func (s *PDFService) inputs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	srcs := make([]string, 0, len(paths))
	for _, path := range paths {
		src, err := s.guard.Input(path)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func (s *PDFService) outputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no output directory given", ErrOutputDir)
	}
	canonical, err := s.guard.Input(dir)
	if err != nil {
		return "", err
	}
	if err := common.EnsureDir(canonical); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	return canonical, nil
}

func (s *PDFService) outputFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: no output file given", ErrOutputDir)
	}
	dir, err := s.outputDir(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	return s.guard.Output(dir, filepath.Base(path))
}
