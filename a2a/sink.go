package a2a

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrSinkFinished is returned when publishing to a finished sink.
var ErrSinkFinished = errors.New("a2a: sink finished")

// EventSink receives the events of one turn. Finish is called exactly
// once, after the last Publish.
type EventSink interface {
	Publish(ctx context.Context, e Event) error
	Finish()
}

// GuardedSink wraps an EventSink so that publishes after Finish fail with
// ErrSinkFinished and only the first Finish reaches the wrapped sink.
// Publish and Finish are serialized.
type GuardedSink struct {
	mu       sync.Mutex
	next     EventSink
	finished bool
}

// NewGuardedSink wraps next. Wrapping a GuardedSink returns it unchanged.
func NewGuardedSink(next EventSink) *GuardedSink {
	if g, ok := next.(*GuardedSink); ok {
		return g
	}
	return &GuardedSink{next: next}
}

// Publish forwards e unless the sink is finished.
func (g *GuardedSink) Publish(ctx context.Context, e Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished {
		return ErrSinkFinished
	}
	return g.next.Publish(ctx, e)
}

// Finish finishes the wrapped sink once.
func (g *GuardedSink) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finished {
		return
	}
	g.finished = true
	g.next.Finish()
}

// Finished reports whether Finish has been called.
func (g *GuardedSink) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// Recorder is an in-memory sink that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
	once   sync.Once
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{done: make(chan struct{})}
}

// Publish records e.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Finish closes the channel returned by Done.
func (r *Recorder) Finish() {
	r.once.Do(func() { close(r.done) })
}

// Done is closed once the recorder is finished.
func (r *Recorder) Done() <-chan struct{} { return r.done }

// Finished reports whether Finish has been called.
func (r *Recorder) Finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Last returns the most recent status update, if any.
func (r *Recorder) Last() (TaskStatusUpdateEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if ev, ok := r.events[i].(TaskStatusUpdateEvent); ok {
			return ev, true
		}
	}
	return TaskStatusUpdateEvent{}, false
}
