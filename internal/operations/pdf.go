package operations

import (
	"context"

	"pixbatch/internal/batch"
)

// PDFCompressor compresses one PDF into dst
type PDFCompressor interface {
	Compress(ctx context.Context, src, dst, level string) error
}

// PDF compression levels
const (
	LevelUltra      = "ultra"
	LevelAggressive = "aggressive"
	LevelGoodEnough = "good_enough"
)

// ValidLevel reports whether level is a known PDF compression level.
// Empty selects the default.
func ValidLevel(level string) bool {
	switch level {
	case "", LevelUltra, LevelAggressive, LevelGoodEnough:
		return true
	}
	return false
}

// CompressPDF compresses PDF files with the given compressor
func CompressPDF(c PDFCompressor) Operation {
	return Operation{
		Name:        "compress_pdf",
		Description: "Compress PDF documents",
		Subdir:      "compressed",
		Validate: func(p Params) error {
			if !ValidLevel(p.Level) {
				return invalidParams("unknown compression level %q", p.Level)
			}
			return nil
		},
		OutputName: suffixName("compressed", fixedExt("pdf")),
		Apply: func(ctx context.Context, src, dst string, p Params) (batch.Output, error) {
			if err := c.Compress(ctx, src, dst, p.Level); err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst}, nil
		},
	}
}
