package operations

import (
	"context"
	"io"
	"os"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

// StripFile writes src to dst without metadata. JPEG and PNG are rewritten
// at the container level so pixels are untouched; any other format is
// decoded and re-encoded, which drops everything but pixels.
func StripFile(src, dst string, preserveICC bool) error {
	var strip func(io.Reader, io.Writer, bool) error
	switch common.Extension(src) {
	case "jpg", "jpeg":
		strip = stripJPEG
	case "png":
		strip = stripPNG
	default:
		img, err := LoadImage(src)
		if err != nil {
			return err
		}
		return saveInOriginalFormat(img, src, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return common.WriteFileAtomic(dst, func(w io.Writer) error {
		return strip(in, w, preserveICC)
	})
}

// StripMetadata removes EXIF, XMP and text metadata
func StripMetadata() Operation {
	return Operation{
		Name:        "strip_metadata",
		Description: "Remove EXIF, XMP and text metadata from images",
		Subdir:      "stripped",
		OutputName:  suffixName("stripped", originalExt),
		Apply: func(_ context.Context, src, dst string, p Params) (batch.Output, error) {
			if err := StripFile(src, dst, p.PreserveICC); err != nil {
				return batch.Output{}, err
			}
			dims, _, err := ProbeDimensions(dst)
			if err != nil {
				// metadata is gone either way; dimensions are informational
				return batch.Output{Path: dst}, nil
			}
			return batch.Output{Path: dst, InputDimensions: dims, OutputDimensions: dims}, nil
		},
	}
}
