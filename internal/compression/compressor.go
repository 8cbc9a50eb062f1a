package compression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"pixbatch/internal/common"
	"pixbatch/internal/pdfops"
)

var ErrNoOutput = errors.New("compressor did not create output file")

// Compressor handles PDF compression operations. Ghostscript is used when it
// is installed; pdfcpu's optimizer is the fallback.
type Compressor struct {
	ghostscriptPath string
	logger          *slog.Logger
}

// NewCompressor creates a new compressor instance. An empty ghostscriptPath
// selects the pdfcpu fallback.
func NewCompressor(ghostscriptPath string, logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{
		ghostscriptPath: ghostscriptPath,
		logger:          logger,
	}
}

// Compress writes a compressed copy of src to dst. When the result is not
// smaller than the input, the input is copied instead.
func (c *Compressor) Compress(ctx context.Context, src, dst, level string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pixbatch-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if c.IsAvailable() {
		err = c.ghostscript(ctx, src, tmpPath, level)
	} else {
		err = c.optimize(src, tmpPath)
	}
	if err != nil {
		return err
	}

	outSize := common.FileSize(tmpPath)
	if outSize == 0 {
		return ErrNoOutput
	}

	inSize := common.FileSize(src)
	result := tmpPath
	if outSize >= inSize {
		c.logger.Debug("Compressed PDF is not smaller, keeping original", "file", src, "input_size", inSize, "output_size", outSize)
		result = src
	}
	return common.CopyFile(result, dst)
}

func (c *Compressor) ghostscript(ctx context.Context, src, dst, level string) error {
	settings := SettingsFor(level)
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=" + settings.PDFSettings,
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dSAFER",
		"-dAutoRotatePages=/None",
		"-dColorImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dColorImageResolution=%d", settings.ImageDPI),
		"-dGrayImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dGrayImageResolution=%d", settings.ImageDPI),
		"-dMonoImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dMonoImageResolution=%d", settings.ImageDPI),
		"-dEmbedAllFonts=true",
		"-dSubsetFonts=true",
		"-dDownsampleColorImages=true",
		"-dDownsampleGrayImages=true",
		"-dDownsampleMonoImages=true",
	}
	args = append(args, settings.Extra...)
	args = append(args, "-sOutputFile="+dst, src)

	cmd := exec.CommandContext(ctx, c.ghostscriptPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ghostscript failed: %v, output: %s", err, string(output))
	}
	return nil
}

func (c *Compressor) optimize(src, dst string) error {
	if err := pdfops.Optimize(src, dst); err != nil {
		return fmt.Errorf("pdf optimize failed: %w", err)
	}
	return nil
}

// IsAvailable reports whether Ghostscript is available
func (c *Compressor) IsAvailable() bool {
	return c.ghostscriptPath != ""
}

// Engine names the backend in use, for status output
func (c *Compressor) Engine() string {
	if c.IsAvailable() {
		return "ghostscript"
	}
	return "pdfcpu"
}

// GetGhostscriptPath returns the path to Ghostscript executable
func (c *Compressor) GetGhostscriptPath() string {
	return c.ghostscriptPath
}
