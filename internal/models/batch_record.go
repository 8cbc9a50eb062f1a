package models

import (
	"time"

	"pixbatch/internal/batch"
)

// BatchRecord is the persisted summary of one finished batch
type BatchRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Operation   string    `gorm:"index" json:"operation"`
	OutputDir   string    `json:"output_dir"`
	Total       int       `json:"total"`
	Completed   int       `json:"completed"`
	Failed      int       `json:"failed"`
	Cancelled   int       `json:"cancelled"`
	InputBytes  int64     `json:"input_bytes"`
	OutputBytes int64     `json:"output_bytes"`
	Outcome     string    `json:"outcome"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `gorm:"index" json:"finished_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewBatchRecord flattens a summary for storage
func NewBatchRecord(summary batch.Summary, outputDir string) BatchRecord {
	return BatchRecord{
		ID:          summary.BatchID,
		Operation:   summary.Operation,
		OutputDir:   outputDir,
		Total:       summary.Total,
		Completed:   summary.Completed,
		Failed:      summary.Failed,
		Cancelled:   summary.Cancelled,
		InputBytes:  summary.InputBytes,
		OutputBytes: summary.OutputBytes,
		Outcome:     string(summary.Outcome()),
		StartedAt:   summary.StartedAt,
		FinishedAt:  summary.FinishedAt,
	}
}

// All lists every model for migration
func All() []any {
	return []any{&UserPreferences{}, &BatchRecord{}}
}
