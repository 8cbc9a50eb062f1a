package progress

// Event is the payload of the "processing-progress" notification
type Event struct {
	BatchID     string `json:"batch_id"`
	Operation   string `json:"operation,omitempty"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
	CurrentFile string `json:"current_file"`
	Done        bool   `json:"done"`
}

// Percent returns completion in the range 0..100
func (e Event) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Completed) / float64(e.Total) * 100
}

// Sink receives progress events on the reporter's delivery goroutine
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}
