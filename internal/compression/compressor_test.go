package compression

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeGhostscript writes a script that puts content into the -sOutputFile target
func fakeGhostscript(t *testing.T, content string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub needs a POSIX shell")
	}

	script := "#!/bin/sh\n" +
		"for a in \"$@\"; do\n" +
		"  case \"$a\" in -sOutputFile=*) out=\"${a#-sOutputFile=}\";; esac\n" +
		"done\n" +
		"printf '%s' '" + content + "' > \"$out\"\n"

	path := filepath.Join(t.TempDir(), "gs")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestSettingsFor(t *testing.T) {
	tests := []struct {
		level       string
		pdfSettings string
		dpi         int
	}{
		{LevelUltra, "/screen", 72},
		{LevelAggressive, "/ebook", 150},
		{LevelGoodEnough, "/printer", 300},
		{"", "/printer", 300},
		{"unknown", "/printer", 300},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got := SettingsFor(tt.level)
			if got.PDFSettings != tt.pdfSettings {
				t.Errorf("Expected PDFSettings %s, got %s", tt.pdfSettings, got.PDFSettings)
			}
			if got.ImageDPI != tt.dpi {
				t.Errorf("Expected ImageDPI %d, got %d", tt.dpi, got.ImageDPI)
			}
		})
	}

	if len(SettingsFor(LevelUltra).Extra) == 0 {
		t.Error("Expected ultra to add extra arguments")
	}
}

func TestLevelForQuality(t *testing.T) {
	tests := map[int]string{
		1:   LevelUltra,
		40:  LevelUltra,
		41:  LevelAggressive,
		70:  LevelAggressive,
		71:  LevelGoodEnough,
		100: LevelGoodEnough,
	}
	for quality, want := range tests {
		if got := LevelForQuality(quality); got != want {
			t.Errorf("LevelForQuality(%d) = %s, want %s", quality, got, want)
		}
	}
}

func TestCompressor_Engine(t *testing.T) {
	if got := NewCompressor("", nil).Engine(); got != "pdfcpu" {
		t.Errorf("Expected pdfcpu engine without ghostscript, got %s", got)
	}
	c := NewCompressor("/usr/bin/gs", nil)
	if !c.IsAvailable() || c.Engine() != "ghostscript" {
		t.Error("Expected ghostscript engine when a path is set")
	}
	if c.GetGhostscriptPath() != "/usr/bin/gs" {
		t.Errorf("Unexpected ghostscript path %s", c.GetGhostscriptPath())
	}
}

func TestCompressor_GhostscriptSmallerOutput(t *testing.T) {
	src := writeInput(t, "%PDF-1.4 a rather large original document")
	dst := filepath.Join(t.TempDir(), "input-compressed.pdf")

	c := NewCompressor(fakeGhostscript(t, "%PDF-small"), nil)
	if err := c.Compress(context.Background(), src, dst, LevelUltra); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "%PDF-small" {
		t.Errorf("Expected compressed output, got %q", got)
	}
}

func TestCompressor_KeepsOriginalWhenLarger(t *testing.T) {
	original := "%PDF-1.4 tiny"
	src := writeInput(t, original)
	dst := filepath.Join(t.TempDir(), "input-compressed.pdf")

	c := NewCompressor(fakeGhostscript(t, "%PDF-1.4 this output is much larger than the input"), nil)
	if err := c.Compress(context.Background(), src, dst, LevelGoodEnough); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	got, _ := os.ReadFile(dst)
	if !bytes.Equal(got, []byte(original)) {
		t.Errorf("Expected original bytes, got %q", got)
	}
}

func TestCompressor_GhostscriptFailure(t *testing.T) {
	src := writeInput(t, "%PDF-1.4")
	dst := filepath.Join(t.TempDir(), "out.pdf")

	c := NewCompressor(filepath.Join(t.TempDir(), "missing-gs"), nil)
	if err := c.Compress(context.Background(), src, dst, LevelUltra); err == nil {
		t.Fatal("Expected error for missing ghostscript binary")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("Expected no output file after failure")
	}
}

func TestCompressor_FallbackRejectsInvalidPDF(t *testing.T) {
	src := writeInput(t, "not a pdf at all")
	dst := filepath.Join(t.TempDir(), "out.pdf")

	if err := NewCompressor("", nil).Compress(context.Background(), src, dst, ""); err == nil {
		t.Fatal("Expected pdfcpu to reject invalid input")
	}
}
