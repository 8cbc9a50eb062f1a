package operations

import "time"

// Params is the operation specific parameter bag sent by the caller. Fields an
// operation does not use are ignored.
type Params struct {
	// Quality is a codec quality 1..100
	Quality int `json:"quality,omitempty" yaml:"quality" toml:"quality"`
	// Format is the target format of convert_images
	Format string `json:"format,omitempty" yaml:"format" toml:"format"`

	// Mode is one of exact, width, height, percentage
	Mode       string `json:"mode,omitempty" yaml:"mode" toml:"mode"`
	Width      int    `json:"width,omitempty" yaml:"width" toml:"width"`
	Height     int    `json:"height,omitempty" yaml:"height" toml:"height"`
	Percentage int    `json:"percentage,omitempty" yaml:"percentage" toml:"percentage"`

	Ratio  string `json:"ratio,omitempty" yaml:"ratio" toml:"ratio"`
	Anchor string `json:"anchor,omitempty" yaml:"anchor" toml:"anchor"`
	CropX  *int   `json:"cropX,omitempty" yaml:"crop_x" toml:"crop_x"`
	CropY  *int   `json:"cropY,omitempty" yaml:"crop_y" toml:"crop_y"`

	Text     string `json:"text,omitempty" yaml:"text" toml:"text"`
	Position string `json:"position,omitempty" yaml:"position" toml:"position"`
	// Opacity is a UI percentage 0..100
	Opacity  int     `json:"opacity,omitempty" yaml:"opacity" toml:"opacity"`
	FontSize float64 `json:"fontSize,omitempty" yaml:"font_size" toml:"font_size"`

	Pattern    string `json:"pattern,omitempty" yaml:"pattern" toml:"pattern"`
	StartIndex int    `json:"startIndex,omitempty" yaml:"start_index" toml:"start_index"`

	PreserveICC bool `json:"preserveIcc,omitempty" yaml:"preserve_icc" toml:"preserve_icc"`

	// Level is the PDF compression level: ultra, aggressive, good_enough
	Level string `json:"level,omitempty" yaml:"level" toml:"level"`
}

// OpacityFraction converts the UI percentage to the 0.0..1.0 alpha scale
func (p Params) OpacityFraction() float64 {
	switch {
	case p.Opacity <= 0:
		return 0
	case p.Opacity >= 100:
		return 1
	default:
		return float64(p.Opacity) / 100
	}
}

// Sequence carries the per-item naming context planned before dispatch
type Sequence struct {
	Index int
	Now   time.Time
}

func validateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return invalidParams("quality must be between 1 and 100, got %d", quality)
	}
	return nil
}
