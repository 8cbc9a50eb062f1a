package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"pixbatch/internal/common"
	"pixbatch/internal/progress"
)

// eventBuffer is how many events a slow client may lag before events are
// dropped for it
const eventBuffer = 64

// Events streams batch progress as server-sent events until the client
// disconnects
func (s *Server) Events(c *gin.Context) {
	events := make(chan progress.Event, eventBuffer)
	unsubscribe := s.broadcaster.Subscribe(progress.SinkFunc(func(e progress.Event) {
		select {
		case events <- e:
		default:
			s.logger.Debug("Dropping progress event for slow client", "batch_id", e.BatchID)
		}
	}))
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case e := <-events:
			c.SSEvent(common.EventProcessingProgress, e)
			return true
		}
	})
}
