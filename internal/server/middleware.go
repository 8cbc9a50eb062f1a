package server

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	statusWarnThreshold  = 400
	statusErrorThreshold = 500
)

// RequestLogger is a Gin middleware that logs requests using slog
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= statusErrorThreshold:
			level = slog.LevelError
		case status >= statusWarnThreshold:
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "http request completed",
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size())
	}
}

type compressWriter struct {
	gin.ResponseWriter
	writer io.Writer
}

func (w *compressWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.writer.Write([]byte(s))
}

// Compression encodes responses with zstd or gzip, whichever the client
// accepts first in that order
func Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		acceptEncoding := c.GetHeader("Accept-Encoding")

		var encoder io.WriteCloser
		var encoding string

		switch {
		case strings.Contains(acceptEncoding, "zstd"):
			enc, err := zstd.NewWriter(c.Writer,
				zstd.WithEncoderLevel(zstd.SpeedDefault),
				zstd.WithEncoderConcurrency(1))
			if err != nil {
				c.Next()
				return
			}
			encoder, encoding = enc, "zstd"
		case strings.Contains(acceptEncoding, "gzip"):
			encoder, encoding = gzip.NewWriter(c.Writer), "gzip"
		default:
			c.Next()
			return
		}

		c.Header("Content-Encoding", encoding)
		c.Header("Vary", "Accept-Encoding")
		c.Writer.Header().Del("Content-Length")
		c.Writer = &compressWriter{ResponseWriter: c.Writer, writer: encoder}
		defer encoder.Close()

		c.Next()
	}
}
