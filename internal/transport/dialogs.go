package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var imageFilter = wailsruntime.FileFilter{
	DisplayName: "Images (*.png, *.jpg, *.webp, *.gif, *.bmp, *.tiff)",
	Pattern:     "*.png;*.jpg;*.jpeg;*.webp;*.gif;*.bmp;*.tif;*.tiff",
}

var pdfFilter = wailsruntime.FileFilter{
	DisplayName: "PDF Files (*.pdf)",
	Pattern:     "*.pdf",
}

type dialogsHandler struct {
	ctx context.Context
}

func NewDialogsHandler(ctx context.Context) DialogHandler {
	return &dialogsHandler{
		ctx: ctx,
	}
}

// FiltersFor maps a file kind onto dialog filters. Unknown kinds get no
// filter.
func FiltersFor(kind string) []wailsruntime.FileFilter {
	switch kind {
	case KindImages:
		return []wailsruntime.FileFilter{imageFilter}
	case KindPDF:
		return []wailsruntime.FileFilter{pdfFilter}
	default:
		return nil
	}
}

func (h *dialogsHandler) OpenFileDialog(kind string) ([]string, error) {
	title := "Select files"
	switch kind {
	case KindImages:
		title = "Select images to process"
	case KindPDF:
		title = "Select PDF files"
	}

	selection, err := wailsruntime.OpenMultipleFilesDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:   title,
		Filters: FiltersFor(kind),
	})
	if err != nil {
		return nil, err
	}

	return selection, nil
}

func (h *dialogsHandler) OpenDirectoryDialog() (string, error) {
	selection, err := wailsruntime.OpenDirectoryDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:                "Select output folder",
		CanCreateDirectories: true,
	})
	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) ShowSaveDialog(filename string) (string, error) {
	selection, err := wailsruntime.SaveFileDialog(h.ctx, wailsruntime.SaveDialogOptions{
		Title:           "Save PDF",
		DefaultFilename: filename,
		Filters:         []wailsruntime.FileFilter{pdfFilter},
	})
	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) OpenFile(filePath string) error {
	wailsruntime.BrowserOpenURL(h.ctx, "file://"+filePath)
	return nil
}
