package operations

import (
	"context"

	"pixbatch/internal/batch"
)

// CompressWebP re-encodes any decodable image as lossy WebP
func CompressWebP() Operation {
	return Operation{
		Name:        "compress_webp",
		Description: "Compress images to lossy WebP",
		Subdir:      "compressed",
		Validate: func(p Params) error {
			return validateQuality(p.Quality)
		},
		OutputName: suffixName("compressed", fixedExt("webp")),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			img, err := LoadImage(src)
			if err != nil {
				return batch.Output{}, err
			}
			if err := SaveImage(img, dst, "webp", p.Quality); err != nil {
				return batch.Output{}, err
			}
			dims := Dimensions(img)
			return batch.Output{Path: dst, InputDimensions: dims, OutputDimensions: dims}, nil
		},
	}
}
