package application

const (
	AppName = "PixBatch"

	// Workspace subdirectories of the single-file operations
	PDFSubdir       = "pdf"
	GeneratedSubdir = "generated"

	// Default file names when the caller gives no output path
	DefaultMergedName = "merged.pdf"
	DefaultImagesName = "images.pdf"

	DefaultHistoryLimit = 50
)
