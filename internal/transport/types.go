package transport

// Dialog interface for system dialogs
type DialogHandler interface {
	OpenFileDialog(kind string) ([]string, error)
	OpenDirectoryDialog() (string, error)
	ShowSaveDialog(filename string) (string, error)
	OpenFile(filePath string) error
}

// File kinds understood by OpenFileDialog
const (
	KindImages = "images"
	KindPDF    = "pdf"
	KindAny    = "any"
)
