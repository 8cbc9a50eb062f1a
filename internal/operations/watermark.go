package operations

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"pixbatch/internal/batch"
)

// Watermark positions
const (
	PositionCenter      = "center"
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
	PositionTiled       = "tiled"
)

const (
	watermarkMargin  = 20
	watermarkTileGap = 80
	defaultFontSize  = 48
	watermarkFontDPI = 72
)

var (
	watermarkFontOnce sync.Once
	watermarkFont     *opentype.Font
	watermarkFontErr  error
)

func loadWatermarkFont() (*opentype.Font, error) {
	watermarkFontOnce.Do(func() {
		watermarkFont, watermarkFontErr = opentype.Parse(goregular.TTF)
	})
	return watermarkFont, watermarkFontErr
}

// WatermarkOrigins returns the top-left corner of every text box for a text
// of tw x th on an image of w x h
func WatermarkOrigins(position string, w, h, tw, th int) []image.Point {
	m := watermarkMargin
	switch position {
	case PositionTopLeft:
		return []image.Point{{m, m}}
	case PositionTopRight:
		return []image.Point{{w - tw - m, m}}
	case PositionBottomLeft:
		return []image.Point{{m, h - th - m}}
	case PositionBottomRight:
		return []image.Point{{w - tw - m, h - th - m}}
	case PositionTiled:
		var points []image.Point
		for y := m; y < h; y += th + watermarkTileGap {
			for x := m; x < w; x += tw + watermarkTileGap {
				points = append(points, image.Point{x, y})
			}
		}
		return points
	default:
		return []image.Point{{(w - tw) / 2, (h - th) / 2}}
	}
}

// DrawWatermark renders text in white at the given opacity (0..1)
func DrawWatermark(img image.Image, text, position string, opacity, size float64) (*image.NRGBA, error) {
	f, err := loadWatermarkFont()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultFontSize
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: watermarkFontDPI, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dst := imaging.Clone(img)
	b := dst.Bounds()

	alpha := uint8(max(0, min(opacity, 1)) * 255)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha}),
		Face: face,
	}

	metrics := face.Metrics()
	tw := d.MeasureString(text).Ceil()
	th := (metrics.Ascent + metrics.Descent).Ceil()

	for _, origin := range WatermarkOrigins(position, b.Dx(), b.Dy(), tw, th) {
		d.Dot = fixed.P(origin.X, origin.Y).Add(fixed.Point26_6{Y: metrics.Ascent})
		d.DrawString(text)
	}
	return dst, nil
}

// AddWatermark stamps a text watermark on each image
func AddWatermark() Operation {
	return Operation{
		Name:        "add_watermark",
		Description: "Stamp a text watermark on images",
		Subdir:      "watermarked",
		Validate: func(p Params) error {
			if p.Text == "" {
				return invalidParams("watermark text is empty")
			}
			if p.Opacity < 0 || p.Opacity > 100 {
				return invalidParams("opacity must be between 0 and 100, got %d", p.Opacity)
			}
			return nil
		},
		OutputName: suffixName("watermarked", originalExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			img, err := LoadImage(src)
			if err != nil {
				return batch.Output{}, err
			}

			marked, err := DrawWatermark(img, p.Text, p.Position, p.OpacityFraction(), p.FontSize)
			if err != nil {
				return batch.Output{}, err
			}
			if err := saveInOriginalFormat(marked, src, dst); err != nil {
				return batch.Output{}, err
			}
			dims := Dimensions(img)
			return batch.Output{Path: dst, InputDimensions: dims, OutputDimensions: dims}, nil
		},
	}
}
