package events

import "sync"

// Recorder retains a bounded tail of emitted events. The daemon feeds it into
// engines so the RPC layer can expose recent notifications without a separate
// indexer; tests use it to assert emission ordering.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewRecorder constructs a recorder keeping at most limit events. A non
// positive limit falls back to 128.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 128
	}
	return &Recorder{limit: limit}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	if overflow := len(r.events) - r.limit; overflow > 0 {
		r.events = append(r.events[:0], r.events[overflow:]...)
	}
}

// Events returns a snapshot of the retained tail in emission order.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
