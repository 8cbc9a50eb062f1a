package common

const (
	// Concurrency constants
	MaxConcurrencyLimit = 8

	// File operation constants
	DefaultFilePermissions = 0755
	DefaultFileMode        = 0644

	// Event names
	EventProcessingProgress = "processing-progress"
	EventBatchFinished      = "batch:finished"

	// Default output subdirectories below the workspace folder
	DefaultWorkspaceName = "PixBatch"
)
