package progress

import (
	"log/slog"
	"sync"
)

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

// MultiSink fans an event out to several sinks in order
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(e)
		}
	}
}

// LogSink writes events to a structured logger at debug level
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(e Event) {
	s.Logger.Debug("Batch progress",
		"batch_id", e.BatchID,
		"completed", e.Completed,
		"total", e.Total,
		"file", e.CurrentFile,
		"done", e.Done)
}

// Broadcaster lets sinks subscribe and unsubscribe while batches run
type Broadcaster struct {
	mu    sync.RWMutex
	next  int
	sinks map[int]Sink
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{sinks: make(map[int]Sink)}
}

// Subscribe registers sink and returns a function removing it again
func (b *Broadcaster) Subscribe(sink Sink) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.sinks[id] = sink

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.sinks, id)
	}
}

func (b *Broadcaster) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sink := range b.sinks {
		sink.Emit(e)
	}
}

// Len returns the number of current subscribers
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sinks)
}
