package pdfops

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pixbatch/internal/batch"
	"pixbatch/internal/common"
)

// PageRange is an inclusive 1-based page range
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FileName names the output of one range
func (r PageRange) FileName(stem string) string {
	if r.Start == r.End {
		return fmt.Sprintf("%s_page_%d.pdf", stem, r.Start)
	}
	return fmt.Sprintf("%s_pages_%d-%d.pdf", stem, r.Start, r.End)
}

func (r PageRange) selection() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseRanges parses "1-3, 5, 7-end". "end" and "fin" stand for the last page.
// Every range is validated against total before anything is written.
func ParseRanges(expr string, total int) ([]PageRange, error) {
	var ranges []PageRange

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		startStr, endStr, isRange := strings.Cut(part, "-")
		if !isRange {
			page, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid page number %q", ErrInvalidRange, part)
			}
			if page < 1 || page > total {
				return nil, fmt.Errorf("%w: page %d is out of range (1-%d)", ErrInvalidRange, page, total)
			}
			ranges = append(ranges, PageRange{Start: page, End: page})
			continue
		}

		startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)
		start, err := strconv.Atoi(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start page %q", ErrInvalidRange, startStr)
		}

		var end int
		if strings.EqualFold(endStr, "end") || strings.EqualFold(endStr, "fin") {
			end = total
		} else if end, err = strconv.Atoi(endStr); err != nil {
			return nil, fmt.Errorf("%w: invalid end page %q", ErrInvalidRange, endStr)
		}

		switch {
		case start < 1 || end < 1:
			return nil, fmt.Errorf("%w: page numbers must be >= 1", ErrInvalidRange)
		case start > end:
			return nil, fmt.Errorf("%w: %d-%d (start > end)", ErrInvalidRange, start, end)
		case end > total:
			return nil, fmt.Errorf("%w: page %d exceeds total pages (%d)", ErrInvalidRange, end, total)
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}

	if len(ranges) == 0 {
		return nil, ErrNoPages
	}
	return ranges, nil
}

// Split writes one PDF per range into outDir. A failing range does not stop
// the others; their errors are joined.
func Split(ctx context.Context, src, outDir, expr string) ([]string, error) {
	total, err := PageCount(src)
	if err != nil {
		return nil, err
	}
	ranges, err := ParseRanges(expr, total)
	if err != nil {
		return nil, err
	}

	stem := common.FileStem(src)
	conf := NewConfiguration()

	var files []string
	var errs []error
	for _, r := range ranges {
		if err := batch.Checkpoint(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		dst := filepath.Join(outDir, r.FileName(stem))
		err := writeVia(dst, func(tmp string) error {
			return api.TrimFile(src, tmp, []string{r.selection()}, conf)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("range %d-%d: %w", r.Start, r.End, err))
			continue
		}
		files = append(files, dst)
	}
	return files, errors.Join(errs...)
}
