package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/executor"
)

// Runner executes a turn. *executor.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, req executor.RequestContext, sink a2a.EventSink)
}

// Handler runs AG-UI requests and streams the events as SSE.
type Handler struct {
	runner Runner
	logger *slog.Logger
}

// NewHandler creates a Handler over runner.
func NewHandler(runner Runner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{runner: runner, logger: logger}
}

// ServeHTTP handles POST requests to run the agent and stream events via SSE.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if input.ThreadID == "" {
		input.ThreadID = events.GenerateThreadID()
	}
	if input.RunID == "" {
		input.RunID = events.GenerateRunID()
	}

	log := h.logger.With("run_id", input.RunID, "thread_id", input.ThreadID)

	req, err := input.Request()
	if err != nil {
		log.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var eventCount int
	sink := NewSink(input.ThreadID, input.RunID, func(ev events.Event) error {
		eventCount++
		if err := WriteSSE(w, ev); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	log.Info("request started", "message_count", len(input.Messages))
	h.runner.Execute(r.Context(), req, sink)
	log.Info("request completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"events_sent", eventCount,
	)
}

// WriteSSE writes an AG-UI event in SSE format.
func WriteSSE(w io.Writer, ev events.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}
