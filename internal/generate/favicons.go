// Package generate builds derived assets (favicon bundles, animations, sprite
// sheets) from one or more source images.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zip"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/operations"
)

type faviconSize struct {
	name string
	size int
}

var faviconSizes = []faviconSize{
	{"favicon-16x16.png", 16},
	{"favicon-32x32.png", 32},
	{"favicon-48x48.png", 48},
	{"apple-touch-icon.png", 180},
	{"android-chrome-192x192.png", 192},
	{"android-chrome-512x512.png", 512},
}

var icoSizes = []int{16, 32, 48}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Icons           []manifestIcon `json:"icons"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Display         string         `json:"display"`
}

// FaviconResult lists what went into the bundle
type FaviconResult struct {
	ZipPath string   `json:"zip_path"`
	Files   []string `json:"files"`
}

// Favicons renders the standard favicon set from src into
// <outDir>/<stem>-favicons.zip
func Favicons(ctx context.Context, src, outDir string) (FaviconResult, error) {
	img, err := operations.LoadImage(src)
	if err != nil {
		return FaviconResult{}, err
	}

	zipPath := filepath.Join(outDir, common.FileStem(src)+"-favicons.zip")
	result := FaviconResult{ZipPath: zipPath}

	err = common.WriteFileAtomic(zipPath, func(w io.Writer) error {
		zw := zip.NewWriter(w)

		for _, entry := range faviconSizes {
			if err := batch.Checkpoint(ctx); err != nil {
				return err
			}
			data, err := pngBytes(imaging.Resize(img, entry.size, entry.size, imaging.Lanczos))
			if err != nil {
				return fmt.Errorf("%s: %w", entry.name, err)
			}
			if err := addZipEntry(zw, entry.name, data); err != nil {
				return err
			}
			result.Files = append(result.Files, entry.name)
		}

		icons := make([]image.Image, 0, len(icoSizes))
		for _, size := range icoSizes {
			icons = append(icons, imaging.Resize(img, size, size, imaging.Lanczos))
		}
		var ico bytes.Buffer
		if err := operations.EncodeICO(&ico, icons); err != nil {
			return fmt.Errorf("favicon.ico: %w", err)
		}
		if err := addZipEntry(zw, "favicon.ico", ico.Bytes()); err != nil {
			return err
		}
		result.Files = append(result.Files, "favicon.ico")

		manifest, err := json.Marshal(defaultManifest())
		if err != nil {
			return err
		}
		if err := addZipEntry(zw, "site.webmanifest", manifest); err != nil {
			return err
		}
		result.Files = append(result.Files, "site.webmanifest")

		return zw.Close()
	})
	if err != nil {
		return FaviconResult{}, err
	}
	return result, nil
}

func defaultManifest() webManifest {
	return webManifest{
		Icons: []manifestIcon{
			{Src: "/android-chrome-192x192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/android-chrome-512x512.png", Sizes: "512x512", Type: "image/png"},
		},
		ThemeColor:      "#ffffff",
		BackgroundColor: "#ffffff",
		Display:         "standalone",
	}
}

func addZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func pngBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
