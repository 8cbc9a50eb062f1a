package operations

import (
	"context"
	"strings"

	"github.com/disintegration/imaging"

	"pixbatch/internal/batch"
)

const convertWebPQuality = 100

var convertFormats = map[string]string{
	"webp": "webp",
	"png":  "png",
	"jpg":  "jpg",
	"jpeg": "jpg",
	"bmp":  "bmp",
	"tif":  "tiff",
	"tiff": "tiff",
	"gif":  "gif",
	"ico":  "ico",
}

func convertExt(_ string, p Params) (string, error) {
	ext, ok := convertFormats[strings.ToLower(p.Format)]
	if !ok {
		return "", invalidParams("unsupported output format %q", p.Format)
	}
	return ext, nil
}

// ConvertImages converts images between formats
func ConvertImages() Operation {
	return Operation{
		Name:        "convert_images",
		Description: "Convert images to another format",
		Subdir:      "converted",
		Validate: func(p Params) error {
			if _, err := convertExt("", p); err != nil {
				return err
			}
			if p.Quality != 0 {
				return validateQuality(p.Quality)
			}
			return nil
		},
		OutputName: suffixName("converted", convertExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			ext, err := convertExt(src, p)
			if err != nil {
				return batch.Output{}, err
			}

			img, err := LoadImage(src)
			if err != nil {
				return batch.Output{}, err
			}
			inDims := Dimensions(img)

			quality := p.Quality
			switch {
			case ext == "webp":
				quality = convertWebPQuality
			case quality == 0:
				quality = defaultJPEGQuality
			}
			if ext == "ico" {
				img = imaging.Fit(img, maxICOSize, maxICOSize, imaging.Lanczos)
			}

			if err := SaveImage(img, dst, ext, quality); err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst, InputDimensions: inDims, OutputDimensions: Dimensions(img)}, nil
		},
	}
}
