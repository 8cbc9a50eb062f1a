package generate

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
	"pixbatch/internal/operations"
)

// SpriteOptions lay out the grid
type SpriteOptions struct {
	Columns int `json:"columns"`
	Padding int `json:"padding"`
}

// AtlasFrame is the cell rectangle of one sprite
type AtlasFrame struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Atlas is the JSON side file of a sprite sheet, keyed by file stem
type Atlas struct {
	Frames map[string]AtlasFrame `json:"frames"`
}

// SpriteResult describes a written sprite sheet
type SpriteResult struct {
	ImagePath   string `json:"image_path"`
	AtlasPath   string `json:"atlas_path"`
	SpriteCount int    `json:"sprite_count"`
	SheetWidth  int    `json:"sheet_width"`
	SheetHeight int    `json:"sheet_height"`
}

// SheetSize returns the sheet size for count cells of cellW x cellH
func SheetSize(count, columns, padding, cellW, cellH int) (int, int) {
	cols := max(columns, 1)
	rows := (count + cols - 1) / cols
	return cols*cellW + (cols+1)*padding, rows*cellH + (rows+1)*padding
}

// Spritesheet packs images into spritesheet.png with a spritesheet.json atlas.
// Cells are as large as the largest image and smaller images are centered.
func Spritesheet(ctx context.Context, paths []string, opts SpriteOptions, outDir string) (SpriteResult, error) {
	if len(paths) == 0 {
		return SpriteResult{}, ErrNoImages
	}

	frames, err := loadFrames(ctx, paths)
	if err != nil {
		return SpriteResult{}, err
	}

	var loaded []frame
	var errs []error
	cellW, cellH := 0, 0
	for _, f := range frames {
		if f.err != nil {
			errs = append(errs, f.err)
			continue
		}
		b := f.img.Bounds()
		cellW, cellH = max(cellW, b.Dx()), max(cellH, b.Dy())
		loaded = append(loaded, f)
	}
	if len(loaded) == 0 {
		return SpriteResult{}, errors.Join(append(errs, ErrNoImages)...)
	}

	cols := max(opts.Columns, 1)
	pad := max(opts.Padding, 0)
	sheetW, sheetH := SheetSize(len(loaded), cols, pad, cellW, cellH)
	sheet := imaging.New(sheetW, sheetH, image.Transparent)

	atlas := Atlas{Frames: make(map[string]AtlasFrame, len(loaded))}
	for i, f := range loaded {
		if err := batch.Checkpoint(ctx); err != nil {
			return SpriteResult{}, err
		}
		x := pad + (i%cols)*(cellW+pad)
		y := pad + (i/cols)*(cellH+pad)

		b := f.img.Bounds()
		offX, offY := (cellW-b.Dx())/2, (cellH-b.Dy())/2
		sheet = imaging.Overlay(sheet, f.img, image.Pt(x+offX, y+offY), 1.0)

		atlas.Frames[common.FileStem(f.path)] = AtlasFrame{X: x, Y: y, W: b.Dx(), H: b.Dy()}
	}

	imagePath := filepath.Join(outDir, "spritesheet.png")
	if err := operations.SaveImage(sheet, imagePath, "png", 0); err != nil {
		return SpriteResult{}, err
	}

	atlasPath := filepath.Join(outDir, "spritesheet.json")
	err = common.WriteFileAtomic(atlasPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(atlas)
	})
	if err != nil {
		return SpriteResult{}, err
	}

	return SpriteResult{
		ImagePath:   imagePath,
		AtlasPath:   atlasPath,
		SpriteCount: len(loaded),
		SheetWidth:  sheetW,
		SheetHeight: sheetH,
	}, errors.Join(errs...)
}
