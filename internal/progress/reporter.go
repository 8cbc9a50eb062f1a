// Package progress publishes batch progress without letting a slow consumer
// stall the workers.
package progress

import (
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the number of pending events kept before older ones collapse
const DefaultBuffer = 1

// Reporter publishes progress for one batch. Events pass through a bounded
// buffer; when it is full the oldest pending event is dropped, so a slow sink
// only ever misses intermediate counts. The initial and final events are
// published unconditionally and the final one is always delivered last.
type Reporter struct {
	batchID   string
	operation string
	total     int
	sink      Sink
	logger    *slog.Logger

	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	completed int
	closed    bool
	dropped   atomic.Int64
}

// NewReporter starts delivering to sink and publishes the completed=0 event
func NewReporter(batchID, operation string, total int, sink Sink, buffer int, logger *slog.Logger) *Reporter {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if sink == nil {
		sink = Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reporter{
		batchID:   batchID,
		operation: operation,
		total:     total,
		sink:      sink,
		logger:    logger,
		events:    make(chan Event, buffer),
		done:      make(chan struct{}),
	}

	go r.deliver()

	r.mu.Lock()
	r.publish(r.event(""))
	r.mu.Unlock()

	return r
}

// OnItemComplete records one resolved item, successful or not
func (r *Reporter) OnItemComplete(inputPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.completed < r.total {
		r.completed++
	}
	r.publish(r.event(filepath.Base(inputPath)))
}

// Finish publishes the final event and waits until the sink received it
func (r *Reporter) Finish() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	final := r.event("")
	final.Done = true
	r.publish(final)
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	<-r.done

	if dropped := r.dropped.Load(); dropped > 0 {
		r.logger.Debug("Collapsed progress events", "batch_id", r.batchID, "dropped", dropped)
	}
}

// Completed returns the number of resolved items seen so far
func (r *Reporter) Completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Dropped returns how many intermediate events were collapsed
func (r *Reporter) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Reporter) event(currentFile string) Event {
	return Event{
		BatchID:     r.batchID,
		Operation:   r.operation,
		Completed:   r.completed,
		Total:       r.total,
		CurrentFile: currentFile,
	}
}

// publish must be called with r.mu held so events enter the buffer in order
func (r *Reporter) publish(e Event) {
	for {
		select {
		case r.events <- e:
			return
		default:
		}

		select {
		case <-r.events:
			r.dropped.Add(1)
		default:
		}
	}
}

func (r *Reporter) deliver() {
	defer close(r.done)
	for e := range r.events {
		r.emit(e)
	}
}

func (r *Reporter) emit(e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Progress sink panicked", "batch_id", r.batchID, "panic", rec)
		}
	}()
	r.sink.Emit(e)
}
