package operations

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

const (
	defaultJPEGQuality  = 90
	originalWebPQuality = 90
	maxICOSize          = 256
)

// LoadImage decodes path, applying EXIF orientation
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, err
		}
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	return img, nil
}

// EncodeImage writes img in the format named by ext
func EncodeImage(w io.Writer, img image.Image, ext string, quality int) error {
	switch ext {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tif", "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	case "ico":
		return EncodeICO(w, []image.Image{img})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// SaveImage atomically writes img to dst in the format named by ext
func SaveImage(img image.Image, dst, ext string, quality int) error {
	return common.WriteFileAtomic(dst, func(w io.Writer) error {
		return EncodeImage(w, img, ext, quality)
	})
}

// saveInOriginalFormat keeps the input's format, falling back to PNG
func saveInOriginalFormat(img image.Image, inputPath, dst string) error {
	ext := outputExtension(common.Extension(inputPath))
	quality := defaultJPEGQuality
	if ext == "webp" {
		quality = originalWebPQuality
	}
	if ext == "ico" {
		img = imaging.Fit(img, maxICOSize, maxICOSize, imaging.Lanczos)
	}
	return SaveImage(img, dst, ext, quality)
}

// outputExtension normalizes an input extension to one we can encode
func outputExtension(ext string) string {
	switch ext {
	case "jpeg", "jpg":
		return "jpg"
	case "tif", "tiff":
		return "tiff"
	case "webp", "png", "bmp", "gif", "ico":
		return ext
	default:
		return "png"
	}
}

// Dimensions returns the pixel size of img
func Dimensions(img image.Image) *batch.Dimensions {
	b := img.Bounds()
	return &batch.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// ProbeDimensions reads only the header of path
func ProbeDimensions(path string) (*batch.Dimensions, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", fmt.Errorf("cannot read image header: %w", err)
	}
	return &batch.Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}

// EncodeICO writes a Vista style icon with one PNG payload per image.
// Images larger than 256px are fitted to 256px.
func EncodeICO(w io.Writer, images []image.Image) error {
	if len(images) == 0 {
		return fmt.Errorf("ico needs at least one image")
	}

	payloads := make([][]byte, 0, len(images))
	sizes := make([]image.Point, 0, len(images))
	for _, img := range images {
		b := img.Bounds()
		if b.Dx() > maxICOSize || b.Dy() > maxICOSize {
			img = imaging.Fit(img, maxICOSize, maxICOSize, imaging.Lanczos)
			b = img.Bounds()
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode ico entry: %w", err)
		}
		payloads = append(payloads, buf.Bytes())
		sizes = append(sizes, image.Pt(b.Dx(), b.Dy()))
	}

	header := []uint16{0, 1, uint16(len(payloads))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	offset := uint32(6 + 16*len(payloads))
	for i, payload := range payloads {
		entry := struct {
			Width, Height, Colors, Reserved uint8
			Planes, BitCount                uint16
			Size, Offset                    uint32
		}{
			Width:    icoDim(sizes[i].X),
			Height:   icoDim(sizes[i].Y),
			Planes:   1,
			BitCount: 32,
			Size:     uint32(len(payload)),
			Offset:   offset,
		}
		if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
			return err
		}
		offset += uint32(len(payload))
	}

	for _, payload := range payloads {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// 256 is stored as 0 in the directory entry
func icoDim(n int) uint8 {
	if n >= maxICOSize {
		return 0
	}
	return uint8(n)
}
