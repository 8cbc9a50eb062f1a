package generate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pixbatch/internal/batch"
	"pixbatch/internal/operations"
)

var ErrNoImages = errors.New("no valid images loaded")

type frame struct {
	path string
	img  image.Image
	err  error
}

// loadFrames decodes paths concurrently. Order is preserved and a failed
// frame carries its error instead of aborting the rest.
func loadFrames(ctx context.Context, paths []string) ([]frame, error) {
	frames := make([]frame, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), 8))
	for i, path := range paths {
		g.Go(func() error {
			if err := batch.Checkpoint(gctx); err != nil {
				return err
			}
			img, err := operations.LoadImage(path)
			if err != nil {
				err = fmt.Errorf("cannot open %s: %w", filepath.Base(path), err)
			}
			frames[i] = frame{path: path, img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}
