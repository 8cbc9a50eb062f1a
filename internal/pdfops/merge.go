package pdfops

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pixbatch/internal/batch"
)

// Merge concatenates inputs in order into dst. Every input is validated
// before the merge starts.
func Merge(ctx context.Context, inputs []string, dst string) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}

	conf := NewConfiguration()
	for _, in := range inputs {
		if err := batch.Checkpoint(ctx); err != nil {
			return err
		}
		if err := api.ValidateFile(in, conf); err != nil {
			return fmt.Errorf("cannot load PDF %s: %w", filepath.Base(in), err)
		}
	}

	if err := batch.Checkpoint(ctx); err != nil {
		return err
	}
	return writeVia(dst, func(tmp string) error {
		return api.MergeCreateFile(inputs, tmp, false, conf)
	})
}
