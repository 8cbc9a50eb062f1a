package compression

// Compression levels
const (
	LevelUltra      = "ultra"
	LevelAggressive = "aggressive"
	LevelGoodEnough = "good_enough"
)

// LevelSettings are the Ghostscript settings of one compression level
type LevelSettings struct {
	PDFSettings string `json:"pdf_settings"`
	ImageDPI    int    `json:"image_dpi"`
	// Extra is appended after the common arguments
	Extra []string `json:"extra,omitempty"`
}

// SettingsFor maps a level to its Ghostscript settings. Unknown and empty
// levels fall back to good_enough.
func SettingsFor(level string) LevelSettings {
	switch level {
	case LevelUltra:
		return LevelSettings{
			PDFSettings: "/screen",
			ImageDPI:    72,
			Extra:       []string{"-dCompressFonts=true", "-dCompressStreams=true"},
		}
	case LevelAggressive:
		return LevelSettings{PDFSettings: "/ebook", ImageDPI: 150}
	default:
		return LevelSettings{PDFSettings: "/printer", ImageDPI: 300}
	}
}

// LevelForQuality maps a 1..100 quality slider to a level
func LevelForQuality(quality int) string {
	switch {
	case quality <= 40:
		return LevelUltra
	case quality <= 70:
		return LevelAggressive
	default:
		return LevelGoodEnough
	}
}
