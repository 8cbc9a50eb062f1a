package operations

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

func optimizeExt(inputPath string, _ Params) (string, error) {
	switch ext := common.Extension(inputPath); ext {
	case "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpg", nil
	default:
		return "", fmt.Errorf("%w for optimization: %s", ErrUnsupportedFormat, ext)
	}
}

// optimizePNG keeps whichever is smaller: a best-compression re-encode or the
// original stream with metadata chunks removed
func optimizePNG(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	var stripped bytes.Buffer
	if err := stripPNG(bytes.NewReader(raw), &stripped, true); err != nil {
		return err
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("cannot decode image: %w", err)
	}
	var encoded bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&encoded, img); err != nil {
		return err
	}

	best := stripped.Bytes()
	if encoded.Len() < len(best) {
		best = encoded.Bytes()
	}
	return common.WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(best)
		return err
	})
}

// OptimizeImages shrinks PNG and JPEG files without touching pixels
func OptimizeImages() Operation {
	return Operation{
		Name:        "optimize_images",
		Description: "Losslessly optimize PNG and JPEG files",
		Subdir:      "optimized",
		OutputName:  suffixName("optimized", optimizeExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			ext, err := optimizeExt(src, p)
			if err != nil {
				return batch.Output{}, err
			}
			if ext == "png" {
				err = optimizePNG(src, dst)
			} else {
				err = StripFile(src, dst, true)
			}
			if err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst}, nil
		},
	}
}
