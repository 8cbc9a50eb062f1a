package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixbatch/internal/batch"
	"pixbatch/internal/operations"
	"pixbatch/internal/services"
)

type submitResponse struct {
	BatchID   string `json:"batch_id"`
	Operation string `json:"operation"`
	Total     int    `json:"total"`
	OutputDir string `json:"output_dir"`
}

type batchResponse struct {
	BatchID string         `json:"batch_id"`
	Status  string         `json:"status"`
	Total   int            `json:"total"`
	Outcome batch.Outcome  `json:"outcome,omitempty"`
	Message string         `json:"message,omitempty"`
	Summary *batch.Summary `json:"summary,omitempty"`
}

const (
	statusRunning  = "running"
	statusFinished = "finished"
)

// ListOperations returns the registered operations
func (s *Server) ListOperations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": s.batches.Operations()})
}

// SubmitBatch validates and starts a batch, answering before it finishes
func (s *Server) SubmitBatch(c *gin.Context) {
	var req services.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid batch request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	handle, err := s.batches.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, submitResponse{
		BatchID:   handle.ID,
		Operation: handle.Operation,
		Total:     handle.Total,
		OutputDir: handle.OutputDir,
	})
}

// GetBatch reports a running batch or the summary of a finished one
func (s *Server) GetBatch(c *gin.Context) {
	handle, ok := s.batches.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrBatchNotFound.Error()})
		return
	}

	resp := batchResponse{BatchID: handle.ID, Status: statusRunning, Total: handle.Total}
	if summary, finished := handle.Summary(); finished {
		resp.Status = statusFinished
		resp.Outcome = summary.Outcome()
		resp.Message = summary.Message()
		resp.Summary = &summary
	}
	c.JSON(http.StatusOK, resp)
}

// ReleaseBatch forgets a finished batch
func (s *Server) ReleaseBatch(c *gin.Context) {
	if err := s.batches.Release(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelBatch cancels one batch
func (s *Server) CancelBatch(c *gin.Context) {
	id := c.Param("id")
	if !s.batches.Cancel(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrBatchNotFound.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"batch_id": id, "cancelled": true})
}

// CancelAll cancels every running batch
func (s *Server) CancelAll(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"cancelled": s.batches.CancelAll()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrBatchNotFound), errors.Is(err, operations.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBatchRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoInputs), errors.Is(err, operations.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOutputDir):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
