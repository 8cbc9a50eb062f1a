package pdfops

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/internal/batch"
)

func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// makePDF builds a PDF with one page per generated image
func makePDF(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	imgDir := t.TempDir()
	images := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		images = append(images, writeImage(t, imgDir, filepath.Base(name)+string(rune('a'+i))+".png", 40+i, 30))
	}
	dst := filepath.Join(dir, name)
	n, err := ImagesToPDF(context.Background(), images, dst)
	require.NoError(t, err)
	require.Equal(t, pages, n)
	return dst
}

func TestParseRanges(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		total   int
		want    []PageRange
		wantErr bool
	}{
		{"mixed", "1-3, 5, 7-end", 10, []PageRange{{1, 3}, {5, 5}, {7, 10}}, false},
		{"fin keyword", "2-FIN", 4, []PageRange{{2, 4}}, false},
		{"blank parts skipped", " ,3,, ", 4, []PageRange{{3, 3}}, false},
		{"zero page", "0-2", 4, nil, true},
		{"reversed", "3-1", 4, nil, true},
		{"overflow", "2-9", 4, nil, true},
		{"single out of range", "5", 4, nil, true},
		{"garbage", "a-b", 4, nil, true},
		{"empty", "", 4, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRanges(tt.expr, tt.total)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageRange_FileName(t *testing.T) {
	assert.Equal(t, "report_page_4.pdf", PageRange{4, 4}.FileName("report"))
	assert.Equal(t, "report_pages_1-3.pdf", PageRange{1, 3}.FileName("report"))
}

func TestImagesToPDF_SkipsBrokenImages(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, dir, "one.png", 50, 20)
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o644))

	dst := filepath.Join(dir, "out.pdf")
	n, err := ImagesToPDF(context.Background(), []string{good, broken}, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")
	assert.Equal(t, 1, n)

	pages, err := PageCount(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestImagesToPDF_AllBroken(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o644))

	_, err := ImagesToPDF(context.Background(), []string{broken}, filepath.Join(dir, "out.pdf"))
	assert.ErrorIs(t, err, ErrNothingWritten)
	assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	src := makePDF(t, dir, "doc.pdf", 4)
	out := t.TempDir()

	files, err := Split(context.Background(), src, out, "1, 2-end")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "doc_page_1.pdf"),
		filepath.Join(out, "doc_pages_2-4.pdf"),
	}, files)

	n, err := PageCount(files[1])
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSplit_InvalidRangeWritesNothing(t *testing.T) {
	src := makePDF(t, t.TempDir(), "doc.pdf", 2)
	out := t.TempDir()

	_, err := Split(context.Background(), src, out, "1, 3")
	assert.ErrorIs(t, err, ErrInvalidRange)

	entries, _ := os.ReadDir(out)
	assert.Empty(t, entries)
}

func TestSplit_Cancelled(t *testing.T) {
	src := makePDF(t, t.TempDir(), "doc.pdf", 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := Split(ctx, src, t.TempDir(), "1, 2")
	assert.ErrorIs(t, err, batch.ErrCancelled)
	assert.Empty(t, files)
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	a := makePDF(t, dir, "a.pdf", 2)
	b := makePDF(t, dir, "b.pdf", 3)

	dst := filepath.Join(t.TempDir(), "merged.pdf")
	require.NoError(t, Merge(context.Background(), []string{a, b}, dst))

	n, err := PageCount(dst)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMerge_RejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	a := makePDF(t, dir, "a.pdf", 1)
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))

	dst := filepath.Join(dir, "merged.pdf")
	err := Merge(context.Background(), []string{a, bad}, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.pdf")
	assert.NoFileExists(t, dst)

	assert.ErrorIs(t, Merge(context.Background(), nil, dst), ErrNoInputs)
}

func TestProtectAndUnlock(t *testing.T) {
	dir := t.TempDir()
	src := makePDF(t, dir, "secret.pdf", 1)

	locked := filepath.Join(dir, "secret-protected.pdf")
	require.NoError(t, Protect(context.Background(), src, locked, "hunter2", ""))
	assert.FileExists(t, locked)

	wrong := filepath.Join(dir, "wrong.pdf")
	assert.Error(t, Unlock(context.Background(), locked, wrong, "letmein"))
	assert.NoFileExists(t, wrong)

	unlocked := filepath.Join(dir, "secret-unlocked.pdf")
	require.NoError(t, Unlock(context.Background(), locked, unlocked, "hunter2"))

	n, err := PageCount(unlocked)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, Protect(context.Background(), src, locked, "", ""), ErrEmptyPassword)
}

func TestExtractImages(t *testing.T) {
	src := makePDF(t, t.TempDir(), "album.pdf", 2)
	out := t.TempDir()

	files, err := ExtractImages(context.Background(), src, out)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Regexp(t, `^album_1\.\w+$`, filepath.Base(files[0]))
	for _, f := range files {
		assert.FileExists(t, f)
	}
}

func TestOptimize(t *testing.T) {
	dir := t.TempDir()
	src := makePDF(t, dir, "big.pdf", 2)
	dst := filepath.Join(dir, "big-optimized.pdf")

	require.NoError(t, Optimize(src, dst))
	n, err := PageCount(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
