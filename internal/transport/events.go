package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"pixbatch/internal/common"
	"pixbatch/internal/progress"
)

// EmitFunc publishes a named event to the frontend
type EmitFunc func(ctx context.Context, name string, data ...interface{})

// EventSink forwards batch progress as "processing-progress" events
type EventSink struct {
	ctx  context.Context
	emit EmitFunc
}

// NewWailsSink emits through the Wails runtime bound to ctx
func NewWailsSink(ctx context.Context) *EventSink {
	return NewEventSink(ctx, wailsruntime.EventsEmit)
}

// NewEventSink emits through emit
func NewEventSink(ctx context.Context, emit EmitFunc) *EventSink {
	return &EventSink{ctx: ctx, emit: emit}
}

func (s *EventSink) Emit(e progress.Event) {
	s.emit(s.ctx, common.EventProcessingProgress, e)
	if e.Done {
		s.emit(s.ctx, common.EventBatchFinished, e.BatchID)
	}
}
