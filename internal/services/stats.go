package services

import (
	"sync"

	"pixbatch/internal/batch"
)

// AppStats represents application usage statistics
type AppStats struct {
	TotalFilesProcessed   int64 `json:"total_files_processed"`
	TotalDataSaved        int64 `json:"total_data_saved"`
	SessionFilesProcessed int   `json:"session_files_processed"`
	SessionDataSaved      int64 `json:"session_data_saved"`
}

// StatsService tracks session counters on top of the persisted history
type StatsService struct {
	history *HistoryService

	mu      sync.Mutex
	session AppStats
}

// NewStatsService creates a stats service. history may be nil.
func NewStatsService(history *HistoryService) *StatsService {
	return &StatsService{history: history}
}

// Record adds a finished batch to the session counters
func (s *StatsService) Record(summary batch.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SessionFilesProcessed += summary.Completed
	s.session.SessionDataSaved += summary.SavedBytes()
}

// GetStats returns session counters and, when history is available, totals
// over all recorded batches
func (s *StatsService) GetStats() AppStats {
	s.mu.Lock()
	stats := s.session
	s.mu.Unlock()

	if s.history == nil {
		stats.TotalFilesProcessed = int64(stats.SessionFilesProcessed)
		stats.TotalDataSaved = stats.SessionDataSaved
		return stats
	}
	if files, saved, err := s.history.Totals(); err == nil {
		stats.TotalFilesProcessed = files
		stats.TotalDataSaved = saved
	}
	return stats
}
