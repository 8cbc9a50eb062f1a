package services

import (
	"time"

	"gorm.io/gorm"

	"pixbatch/internal/batch"
	"pixbatch/internal/models"
)

// HistoryService stores finished batch summaries
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record persists a finished batch
func (s *HistoryService) Record(summary batch.Summary, outputDir string) error {
	record := models.NewBatchRecord(summary, outputDir)
	return s.db.Save(&record).Error
}

// List returns the most recent batches first. A limit of zero or less
// returns every record.
func (s *HistoryService) List(limit int) ([]models.BatchRecord, error) {
	var records []models.BatchRecord
	query := s.db.Order("finished_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Totals sums completed files and saved bytes over every recorded batch
func (s *HistoryService) Totals() (files int64, saved int64, err error) {
	var row struct {
		Files  int64
		Input  int64
		Output int64
	}
	err = s.db.Model(&models.BatchRecord{}).
		Select("COALESCE(SUM(completed), 0) AS files, COALESCE(SUM(input_bytes), 0) AS input, COALESCE(SUM(output_bytes), 0) AS output").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Files, row.Input - row.Output, nil
}

// Prune deletes records that finished before now minus keep and returns how
// many were removed
func (s *HistoryService) Prune(keep time.Duration) (int64, error) {
	cutoff := time.Now().Add(-keep)
	result := s.db.Where("finished_at < ?", cutoff).Delete(&models.BatchRecord{})
	return result.RowsAffected, result.Error
}
