package pdfops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/operations"
)

const pageJPEGQuality = 90

// ImagesToPDF places every image on its own page sized to the image. Images
// that cannot be decoded are skipped and reported; the call fails only when
// no page could be produced.
func ImagesToPDF(ctx context.Context, images []string, dst string) (int, error) {
	if len(images) == 0 {
		return 0, ErrNoInputs
	}

	stage, err := os.MkdirTemp(filepath.Dir(dst), ".pixbatch-pages-*")
	if err != nil {
		return 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(stage)

	var pages []string
	var errs []error
	for i, path := range images {
		if err := batch.Checkpoint(ctx); err != nil {
			return 0, err
		}

		img, err := operations.LoadImage(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		page := filepath.Join(stage, fmt.Sprintf("page-%04d.jpg", i))
		if err := operations.SaveImage(img, page, "jpg", pageJPEGQuality); err != nil {
			errs = append(errs, fmt.Errorf("%s: JPEG encode failed: %w", filepath.Base(path), err))
			continue
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return 0, errors.Join(append(errs, ErrNothingWritten)...)
	}

	err = writeVia(dst, func(tmp string) error {
		return api.ImportImagesFile(pages, tmp, pdfcpu.DefaultImportConfig(), NewConfiguration())
	})
	if err != nil {
		return 0, err
	}
	return len(pages), errors.Join(errs...)
}

// ExtractImages writes the embedded images of src into outDir as
// <stem>_<n>.<ext>, numbered in page order
func ExtractImages(ctx context.Context, src, outDir string) ([]string, error) {
	if err := batch.Checkpoint(ctx); err != nil {
		return nil, err
	}
	if err := common.EnsureDir(outDir); err != nil {
		return nil, err
	}

	stage, err := os.MkdirTemp(outDir, ".pixbatch-extract-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(stage)

	if err := api.ExtractImagesFile(src, stage, nil, NewConfiguration()); err != nil {
		return nil, fmt.Errorf("cannot extract images: %w", err)
	}

	entries, err := os.ReadDir(stage)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	stem := common.FileStem(src)
	files := make([]string, 0, len(names))
	var errs []error
	for i, name := range names {
		if err := batch.Checkpoint(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		ext := strings.ToLower(filepath.Ext(name))
		dst := filepath.Join(outDir, fmt.Sprintf("%s_%d%s", stem, i+1, ext))
		if err := os.Rename(filepath.Join(stage, name), dst); err != nil {
			errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
			continue
		}
		files = append(files, dst)
	}
	return files, errors.Join(errs...)
}
