// Package metadata reads image headers and EXIF tags without decoding pixels.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"pixbatch/internal/operations"
)

// Entry is one labelled EXIF value
type Entry struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// ImageMetadata describes one image file
type ImageMetadata struct {
	Path     string  `json:"path"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	FileSize int64   `json:"file_size"`
	HasGPS   bool    `json:"has_gps"`
	Exif     []Entry `json:"exif"`
}

// labels lists the tags worth showing, in display order
var labels = []struct {
	name  string
	label string
}{
	{"Make", "Camera Make"},
	{"Model", "Camera Model"},
	{"DateTime", "Date/Time"},
	{"DateTimeOriginal", "Date/Time Original"},
	{"ExposureTime", "Exposure Time"},
	{"FNumber", "F-Number"},
	{"ISOSpeedRatings", "ISO Speed"},
	{"FocalLength", "Focal Length"},
	{"FocalLengthIn35mmFilm", "Focal Length (35mm)"},
	{"MeteringMode", "Metering Mode"},
	{"Flash", "Flash"},
	{"WhiteBalance", "White Balance"},
	{"ExposureMode", "Exposure Mode"},
	{"ImageWidth", "EXIF Width"},
	{"ImageLength", "EXIF Height"},
	{"Orientation", "Orientation"},
	{"XResolution", "X Resolution"},
	{"YResolution", "Y Resolution"},
	{"Software", "Software"},
	{"Artist", "Artist"},
	{"Copyright", "Copyright"},
	{"GPSLatitude", "GPS Latitude"},
	{"GPSLongitude", "GPS Longitude"},
	{"GPSAltitude", "GPS Altitude"},
	{"LensModel", "Lens Model"},
	{"ColorSpace", "Color Space"},
	{"PixelXDimension", "Pixel Width"},
	{"PixelYDimension", "Pixel Height"},
}

// Read returns the dimensions, format, size and EXIF entries of path. Files
// without EXIF, or with EXIF that cannot be parsed, are not an error.
func Read(path string) (*ImageMetadata, error) {
	dims, _, err := operations.ProbeDimensions(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	format := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		format = "UNKNOWN"
	}

	meta := &ImageMetadata{
		Path:     path,
		Width:    dims.Width,
		Height:   dims.Height,
		Format:   format,
		FileSize: info.Size(),
		Exif:     []Entry{},
	}

	// unreadable EXIF is treated like missing EXIF
	tags, _ := readTags(path)

	// primary image only; IFD1 describes the thumbnail
	values := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.IfdPath == "IFD1" {
			continue
		}
		if strings.HasPrefix(tag.TagName, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			meta.HasGPS = true
		}
		if _, seen := values[tag.TagName]; !seen {
			values[tag.TagName] = strings.TrimSpace(tag.Formatted)
		}
	}

	for _, l := range labels {
		value, ok := values[l.name]
		if !ok || value == "" || value == "unknown" {
			continue
		}
		meta.Exif = append(meta.Exif, Entry{Tag: l.label, Value: value})
	}
	return meta, nil
}

func readTags(path string) ([]exif.ExifTag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(f, nil, true)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read exif: %w", err)
	}
	return tags, nil
}
