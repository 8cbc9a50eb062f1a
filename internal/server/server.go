// Package server exposes the batch executor over HTTP for headless use.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pixbatch/internal/progress"
	"pixbatch/internal/services"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves the REST API and the progress stream
type Server struct {
	batches     *services.BatchService
	pdf         *services.PDFService
	broadcaster *progress.Broadcaster
	logger      *slog.Logger
}

// New creates a server. broadcaster must be the sink the batch service
// publishes to.
func New(batches *services.BatchService, pdf *services.PDFService, broadcaster *progress.Broadcaster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		batches:     batches,
		pdf:         pdf,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))
	s.RegisterRoutes(router)
	return router
}

// RegisterRoutes registers API routes on the provided gin engine
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/events", s.Events)

	api := router.Group("/api/v1", Compression())
	{
		api.GET("/operations", s.ListOperations)
		api.POST("/batches", s.SubmitBatch)
		api.GET("/batches/:id", s.GetBatch)
		api.DELETE("/batches/:id", s.ReleaseBatch)
		api.POST("/batches/:id/cancel", s.CancelBatch)
		api.POST("/cancel", s.CancelAll)
		api.POST("/pdf/:op", s.RunPDF)
	}
}

// Run listens on addr until ctx is done, then cancels running batches and
// shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		// Request contexts end with ctx so open event streams let go
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if n := s.batches.CancelAll(); n > 0 {
			s.logger.Info("Cancelled running batches on shutdown", "count", n)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
