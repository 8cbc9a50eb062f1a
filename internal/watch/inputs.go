// Package watch feeds batches from watched folders and cron schedules.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"pixbatch/internal/common"
)

var (
	imageExtensions = []string{"jpg", "jpeg", "png", "webp", "gif", "bmp", "tif", "tiff"}
	pdfExtensions   = []string{"pdf"}
)

// Accepts reports whether path is an input operation can read. Hidden files
// are skipped, which also covers in-progress atomic writes.
func Accepts(operation, path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := common.Extension(path)
	if operation == "compress_pdf" {
		return lo.Contains(pdfExtensions, ext)
	}
	return lo.Contains(imageExtensions, ext)
}

// ListInputs returns the files directly inside dir that operation accepts,
// sorted by name
func ListInputs(dir, operation string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		path := filepath.Join(dir, e.Name())
		return path, e.Type().IsRegular() && Accepts(operation, path)
	})
	sort.Strings(files)
	return files, nil
}
