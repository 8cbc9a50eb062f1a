package operations

import (
	"context"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"pixbatch/internal/batch"
)

// Crop anchors
const (
	AnchorCenter      = "center"
	AnchorTopLeft     = "top-left"
	AnchorTopRight    = "top-right"
	AnchorBottomLeft  = "bottom-left"
	AnchorBottomRight = "bottom-right"
)

// ParseRatio parses "w:h" with both sides positive
func ParseRatio(ratio string) (float64, float64, bool) {
	left, right, ok := strings.Cut(ratio, ":")
	if !ok {
		return 0, 0, false
	}
	rw, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil || rw <= 0 {
		return 0, 0, false
	}
	rh, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil || rh <= 0 {
		return 0, 0, false
	}
	return rw, rh, true
}

// CropRect computes the crop rectangle for an image of w x h.
//
// An explicit origin wins over ratio and anchor and is clamped to the image.
// Otherwise the size comes from the ratio (largest fitting rectangle) or, for
// a free ratio, from width and height clamped to the image, and the anchor
// places it.
func CropRect(w, h int, p Params) (image.Rectangle, error) {
	if p.CropX != nil && p.CropY != nil {
		x, y := clamp(*p.CropX, 0, w), clamp(*p.CropY, 0, h)
		cw, ch := min(p.Width, w-x), min(p.Height, h-y)
		if cw <= 0 || ch <= 0 {
			return image.Rectangle{}, ErrZeroDimensions
		}
		return image.Rect(x, y, x+cw, y+ch), nil
	}

	var cw, ch int
	if p.Ratio == "" || p.Ratio == "free" {
		cw, ch = min(p.Width, w), min(p.Height, h)
	} else {
		rw, rh, ok := ParseRatio(p.Ratio)
		if !ok {
			return image.Rectangle{}, invalidParams("invalid crop ratio %q", p.Ratio)
		}
		scale := math.Min(float64(w)/rw, float64(h)/rh)
		cw = min(int(math.Round(rw*scale)), w)
		ch = min(int(math.Round(rh*scale)), h)
	}
	if cw <= 0 || ch <= 0 {
		return image.Rectangle{}, ErrZeroDimensions
	}

	var x, y int
	switch p.Anchor {
	case AnchorTopLeft:
	case AnchorTopRight:
		x = w - cw
	case AnchorBottomLeft:
		y = h - ch
	case AnchorBottomRight:
		x, y = w-cw, h-ch
	default:
		x, y = (w-cw)/2, (h-ch)/2
	}
	return image.Rect(x, y, x+cw, y+ch), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func validateCrop(p Params) error {
	if (p.CropX == nil) != (p.CropY == nil) {
		return invalidParams("cropX and cropY must be given together")
	}
	if p.Ratio != "" && p.Ratio != "free" {
		if _, _, ok := ParseRatio(p.Ratio); !ok {
			return invalidParams("invalid crop ratio %q", p.Ratio)
		}
		return nil
	}
	if p.Width <= 0 || p.Height <= 0 {
		return invalidParams("crop needs a width and height")
	}
	return nil
}

// CropImages cuts a rectangle out of each image
func CropImages() Operation {
	return Operation{
		Name:        "crop_images",
		Description: "Crop images by ratio and anchor or by an explicit rectangle",
		Subdir:      "cropped",
		Validate:    validateCrop,
		OutputName:  suffixName("cropped", originalExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			img, err := LoadImage(src)
			if err != nil {
				return batch.Output{}, err
			}
			inDims := Dimensions(img)

			rect, err := CropRect(inDims.Width, inDims.Height, p)
			if err != nil {
				return batch.Output{}, err
			}

			cropped := imaging.Crop(img, rect.Add(img.Bounds().Min))
			if err := saveInOriginalFormat(cropped, src, dst); err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst, InputDimensions: inDims, OutputDimensions: Dimensions(cropped)}, nil
		},
	}
}
