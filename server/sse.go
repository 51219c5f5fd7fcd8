package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spetersoncode/tablebridge/a2a"
)

// sseSink writes each event as a JSON-RPC response in an SSE data line.
type sseSink struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	id      json.RawMessage
	closed  bool

	done chan struct{}
	once sync.Once
}

func newSSESink(w io.Writer, flusher http.Flusher, id json.RawMessage) *sseSink {
	return &sseSink{w: w, flusher: flusher, id: id, done: make(chan struct{})}
}

func (s *sseSink) Publish(_ context.Context, e a2a.Event) error {
	return s.write(e)
}

func (s *sseSink) Finish() {
	s.once.Do(func() { close(s.done) })
}

func (s *sseSink) write(result any) error {
	data, err := json.Marshal(a2a.NewResponse(s.id, result))
	if err != nil {
		return fmt.Errorf("server: encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return a2a.ErrSinkFinished
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("server: write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// close ends the stream. Later writes fail.
func (s *sseSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

// storingSink folds every event into the stored task before passing it on.
type storingSink struct {
	s      *Server
	taskID string
	next   a2a.EventSink
}

func (s *Server) storing(taskID string, next a2a.EventSink) a2a.EventSink {
	return &storingSink{s: s, taskID: taskID, next: next}
}

func (ss *storingSink) Publish(ctx context.Context, e a2a.Event) error {
	if err := ss.s.tasks.Apply(ss.taskID, e); err != nil {
		ss.s.logger.Warn("failed to store task event", "task_id", ss.taskID, "kind", e.EventKind(), "error", err)
	}
	return ss.next.Publish(ctx, e)
}

func (ss *storingSink) Finish() { ss.next.Finish() }

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
