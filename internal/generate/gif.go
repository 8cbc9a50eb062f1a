package generate

import (
	"context"
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

// GIFOptions control the animation timing
type GIFOptions struct {
	DelayMs int `json:"delayMs"`
	// LoopCount 0 loops forever
	LoopCount int `json:"loopCount"`
}

// GIFResult describes a written animation
type GIFResult struct {
	OutputPath string `json:"output_path"`
	FrameCount int    `json:"frame_count"`
}

// delayCentiseconds converts milliseconds to GIF ticks, never below one
func delayCentiseconds(ms int) int {
	return max(ms/10, 1)
}

// CreateGIF writes <outDir>/animation.gif. The first image fixes the canvas
// size and must load; later frames that fail are skipped and reported in the
// returned error next to a valid result.
func CreateGIF(ctx context.Context, paths []string, opts GIFOptions, outDir string) (GIFResult, error) {
	if len(paths) == 0 {
		return GIFResult{}, ErrNoImages
	}

	frames, err := loadFrames(ctx, paths)
	if err != nil {
		return GIFResult{}, err
	}
	if frames[0].err != nil {
		return GIFResult{}, frames[0].err
	}

	bounds := frames[0].img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	delay := delayCentiseconds(opts.DelayMs)

	anim := &gif.GIF{LoopCount: opts.LoopCount}
	var errs []error
	for _, f := range frames {
		if err := batch.Checkpoint(ctx); err != nil {
			return GIFResult{}, err
		}
		if f.err != nil {
			errs = append(errs, f.err)
			continue
		}

		img := f.img
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			img = imaging.Resize(img, w, h, imaging.Lanczos)
		}
		anim.Image = append(anim.Image, quantize(img))
		anim.Delay = append(anim.Delay, delay)
	}

	dst := filepath.Join(outDir, "animation.gif")
	err = common.WriteFileAtomic(dst, func(w io.Writer) error {
		return gif.EncodeAll(w, anim)
	})
	if err != nil {
		return GIFResult{}, err
	}
	return GIFResult{OutputPath: dst, FrameCount: len(anim.Image)}, errors.Join(errs...)
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	return p
}
