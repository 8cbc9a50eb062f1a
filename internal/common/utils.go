package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// CopyFile copies src to dst atomically, creating the destination directory if needed
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	return WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, sourceFile)
		return err
	})
}

// WriteFileAtomic streams write into a temp file next to dst and renames it
// into place once write returns without error.
func WriteFileAtomic(dst string, write func(w io.Writer) error) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, DefaultFilePermissions); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".pixbatch-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tempFile.Name()

	if err := write(tempFile); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, DefaultFileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}

	// remove existing file to avoid rename failures on Windows
	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(dst)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

// FileSize returns the size of path, or 0 when it cannot be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FileStem returns the base name of path without its extension
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extension returns the lower-cased extension of path without the dot
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// EnsureDir creates dir and its parents
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("empty dir path")
	}
	if err := os.MkdirAll(dir, DefaultFilePermissions); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return nil
}
