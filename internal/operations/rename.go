package operations

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

// RenderPattern expands the rename tokens {name}, {index}, {date} and {ext}.
// The original extension is appended when the result has none.
func RenderPattern(inputPath string, p Params, seq Sequence) (string, error) {
	if p.Pattern == "" {
		return "", invalidParams("rename pattern is empty")
	}

	ext := strings.TrimPrefix(filepath.Ext(inputPath), ".")
	name := strings.NewReplacer(
		"{name}", common.FileStem(inputPath),
		"{index}", fmt.Sprintf("%03d", p.StartIndex+seq.Index),
		"{date}", seq.Now.Format("2006-01-02"),
		"{ext}", ext,
	).Replace(p.Pattern)

	if !strings.Contains(name, ".") && ext != "" {
		name += "." + ext
	}
	return name, nil
}

// BulkRename copies files under names built from a pattern
func BulkRename() Operation {
	return Operation{
		Name:        "bulk_rename",
		Description: "Copy files under pattern based names",
		Subdir:      "renamed",
		Validate: func(p Params) error {
			if p.Pattern == "" {
				return invalidParams("rename pattern is empty")
			}
			if strings.ContainsAny(p.Pattern, `/\`) {
				return invalidParams("rename pattern cannot contain path separators")
			}
			if p.StartIndex < 0 {
				return invalidParams("start index cannot be negative")
			}
			return nil
		},
		OutputName: RenderPattern,
		Apply: func(_ context.Context, src, dst string, _ Params) (batch.Output, error) {
			if err := common.CopyFile(src, dst); err != nil {
				return batch.Output{}, err
			}
			return batch.Output{Path: dst}, nil
		},
	}
}
