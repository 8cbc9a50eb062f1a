package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exifSegment builds an APP1 segment holding a little-endian TIFF with a
// single Make tag
func exifSegment(camera string) []byte {
	value := append([]byte(camera), 0)

	var tiff bytes.Buffer
	tiff.WriteString("II*\x00")
	binary.Write(&tiff, binary.LittleEndian, uint32(8))
	binary.Write(&tiff, binary.LittleEndian, uint16(1))
	binary.Write(&tiff, binary.LittleEndian, uint16(0x010f))
	binary.Write(&tiff, binary.LittleEndian, uint16(2))
	binary.Write(&tiff, binary.LittleEndian, uint32(len(value)))
	binary.Write(&tiff, binary.LittleEndian, uint32(8+2+12+4))
	binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write(value)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	seg := []byte{0xff, 0xe1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

func writeJPEG(t *testing.T, dir, name string, withExif bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 24, 12)), nil))

	data := buf.Bytes()
	if withExif {
		out := append([]byte{}, data[:2]...)
		out = append(out, exifSegment("Canon")...)
		data = append(out, data[2:]...)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRead_WithExif(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "shot.jpg", true)

	meta, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 24, meta.Width)
	assert.Equal(t, 12, meta.Height)
	assert.Equal(t, "JPG", meta.Format)
	assert.Greater(t, meta.FileSize, int64(0))
	assert.False(t, meta.HasGPS)
	require.NotEmpty(t, meta.Exif)
	assert.Equal(t, Entry{Tag: "Camera Make", Value: "Canon"}, meta.Exif[0])
}

func TestRead_WithoutExif(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "plain.jpeg", false)

	meta, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "JPEG", meta.Format)
	assert.Empty(t, meta.Exif)
	assert.NotNil(t, meta.Exif)
}

func TestRead_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}
