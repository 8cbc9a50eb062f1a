package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pixbatch/internal/batch"
)

type pdfRequest struct {
	Input         string   `json:"input"`
	Inputs        []string `json:"inputs"`
	OutputDir     string   `json:"outputDir"`
	OutputPath    string   `json:"outputPath"`
	Quality       int      `json:"quality"`
	Password      string   `json:"password"`
	OwnerPassword string   `json:"ownerPassword"`
	Ranges        string   `json:"ranges"`
}

// RunPDF runs one single-file PDF operation synchronously
func (s *Server) RunPDF(c *gin.Context) {
	var req pdfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	var result batch.SingleResult

	switch c.Param("op") {
	case "compress":
		result = s.pdf.CompressPDF(ctx, req.Input, req.Quality, req.OutputDir)
	case "protect":
		result = s.pdf.ProtectPDF(ctx, req.Input, req.Password, req.OwnerPassword, req.OutputDir)
	case "unlock":
		result = s.pdf.UnlockPDF(ctx, req.Input, req.Password, req.OutputDir)
	case "split":
		result = s.pdf.SplitPDF(ctx, req.Input, req.Ranges, req.OutputDir)
	case "merge":
		result = s.pdf.MergePDFs(ctx, req.Inputs, req.OutputPath)
	case "images":
		result = s.pdf.ImagesToPDF(ctx, req.Inputs, req.OutputPath)
	case "extract":
		result = s.pdf.ExtractImages(ctx, req.Input, req.OutputDir)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown pdf operation"})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}
