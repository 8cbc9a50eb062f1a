package operations

import (
	"context"
	"math"

	"github.com/disintegration/imaging"

	"pixbatch/internal/batch"
)

// Resize modes
const (
	ResizeExact      = "exact"
	ResizeWidth      = "width"
	ResizeHeight     = "height"
	ResizePercentage = "percentage"
)

// ResizeTarget computes the output size for an image of w x h.
// Exact ignores the aspect ratio; the other modes keep it and round to the
// nearest pixel.
func ResizeTarget(w, h int, p Params) (int, int, error) {
	var newW, newH int
	switch p.Mode {
	case ResizeExact:
		newW, newH = p.Width, p.Height
	case ResizeWidth:
		if w == 0 {
			return 0, 0, ErrZeroDimensions
		}
		ratio := float64(p.Width) / float64(w)
		newW, newH = p.Width, int(math.Round(float64(h)*ratio))
	case ResizeHeight:
		if h == 0 {
			return 0, 0, ErrZeroDimensions
		}
		ratio := float64(p.Height) / float64(h)
		newW, newH = int(math.Round(float64(w)*ratio)), p.Height
	case ResizePercentage:
		scale := float64(p.Percentage) / 100
		newW, newH = int(math.Round(float64(w)*scale)), int(math.Round(float64(h)*scale))
	default:
		return 0, 0, invalidParams("unknown resize mode %q", p.Mode)
	}

	if newW <= 0 || newH <= 0 {
		return 0, 0, ErrZeroDimensions
	}
	return newW, newH, nil
}

func validateResize(p Params) error {
	switch p.Mode {
	case ResizeExact:
		if p.Width <= 0 || p.Height <= 0 {
			return invalidParams("exact resize needs width and height")
		}
	case ResizeWidth:
		if p.Width <= 0 {
			return invalidParams("width resize needs a width")
		}
	case ResizeHeight:
		if p.Height <= 0 {
			return invalidParams("height resize needs a height")
		}
	case ResizePercentage:
		if p.Percentage <= 0 {
			return invalidParams("percentage must be positive")
		}
	default:
		return invalidParams("unknown resize mode %q", p.Mode)
	}
	return nil
}

// ResizeImages scales images with a Lanczos filter, keeping their format
func ResizeImages() Operation {
	return Operation{
		Name:        "resize_images",
		Description: "Resize images by exact size, width, height or percentage",
		Subdir:      "resized",
		Validate:    validateResize,
		OutputName:  suffixName("resized", originalExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			img, err := LoadImage(src)
			if err != nil {
				return batch.Output{}, err
			}
			inDims := Dimensions(img)

			newW, newH, err := ResizeTarget(inDims.Width, inDims.Height, p)
			if err != nil {
				return batch.Output{}, err
			}

			resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
			if err := saveInOriginalFormat(resized, src, dst); err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst, InputDimensions: inDims, OutputDimensions: Dimensions(resized)}, nil
		},
	}
}
