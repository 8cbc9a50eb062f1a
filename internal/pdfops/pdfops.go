// Package pdfops implements single-file PDF operations on top of pdfcpu.
package pdfops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pixbatch/internal/common"
)

func init() {
	// never read or create a pdfcpu config dir in the user's home
	model.ConfigPath = "disable"
}

// NewConfiguration returns the pdfcpu configuration used by every operation
func NewConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages of path
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read PDF %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// Optimize rewrites src into dst with pdfcpu's optimizer
func Optimize(src, dst string) error {
	return writeVia(dst, func(tmp string) error {
		return api.OptimizeFile(src, tmp, NewConfiguration())
	})
}

// writeVia lets fn write into a private temp path and moves the result to
// dst, so dst never holds a partial file
func writeVia(dst string, fn func(tmp string) error) error {
	dir := filepath.Dir(dst)
	if err := common.EnsureDir(dir); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp(dir, ".pixbatch-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, filepath.Base(dst))
	if err := fn(tmp); err != nil {
		return err
	}
	if common.FileSize(tmp) == 0 {
		return ErrNothingWritten
	}

	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(dst)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}
