package agui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/spetersoncode/tablebridge/a2a"
)

// RenderToolName is the frontend tool that draws A2UI surfaces.
const RenderToolName = "render_a2ui"

// Emitter delivers one AG-UI event to the client.
type Emitter func(events.Event) error

// Sink translates the events of one A2A turn into AG-UI events.
// It is not safe for concurrent use.
type Sink struct {
	threadID string
	runID    string
	emit     Emitter

	started  bool
	ended    bool
	finished bool
}

var _ a2a.EventSink = (*Sink)(nil)

// NewSink creates a Sink for one run.
func NewSink(threadID, runID string, emit Emitter) *Sink {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Sink{threadID: threadID, runID: runID, emit: emit}
}

// ThreadID returns the thread ID for this sink.
func (s *Sink) ThreadID() string { return s.threadID }

// RunID returns the run ID for this sink.
func (s *Sink) RunID() string { return s.runID }

// Publish implements a2a.EventSink.
func (s *Sink) Publish(_ context.Context, e a2a.Event) error {
	if s.finished {
		return a2a.ErrSinkFinished
	}
	if !s.started {
		s.started = true
		if err := s.emit(events.NewRunStartedEvent(s.threadID, s.runID)); err != nil {
			return err
		}
	}

	switch ev := e.(type) {
	case a2a.Message:
		return s.message(ev)
	case a2a.TaskStatusUpdateEvent:
		return s.status(ev)
	}
	return nil
}

// Finish implements a2a.EventSink. A run that started but never reached a
// terminal status is closed with RUN_FINISHED.
func (s *Sink) Finish() {
	if s.finished {
		return
	}
	s.finished = true
	if s.started && !s.ended {
		s.ended = true
		_ = s.emit(events.NewRunFinishedEvent(s.threadID, s.runID))
	}
}

func (s *Sink) status(ev a2a.TaskStatusUpdateEvent) error {
	if !ev.Final {
		if ev.Status.Message == nil {
			return nil
		}
		return s.text(ev.Status.Message.TextContent())
	}

	s.ended = true
	if ev.Status.State == a2a.TaskStateFailed {
		reason := "run failed"
		if ev.Status.Message != nil && ev.Status.Message.TextContent() != "" {
			reason = ev.Status.Message.TextContent()
		}
		return s.emit(events.NewRunErrorEvent(reason))
	}
	return s.emit(events.NewRunFinishedEvent(s.threadID, s.runID))
}

func (s *Sink) message(msg a2a.Message) error {
	var ui []any
	for _, p := range msg.Parts {
		switch part := p.(type) {
		case a2a.TextPart:
			if err := s.text(part.Text); err != nil {
				return err
			}
		case a2a.DataPart:
			ui = append(ui, part.Data)
		}
	}
	if len(ui) == 0 {
		return nil
	}
	return s.render(msg.MessageID, ui)
}

// text emits a complete assistant text message.
func (s *Sink) text(content string) error {
	if content == "" {
		return nil
	}
	id := events.GenerateMessageID()
	for _, ev := range []events.Event{
		events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
		events.NewTextMessageContentEvent(id, content),
		events.NewTextMessageEndEvent(id),
	} {
		if err := s.emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// render emits the frontend tool call that carries the UI messages.
func (s *Sink) render(messageID string, ui []any) error {
	args, err := json.Marshal(map[string]any{"messages": ui})
	if err != nil {
		return fmt.Errorf("agui: encode %s arguments: %w", RenderToolName, err)
	}
	callID := "call_" + messageID
	for _, ev := range []events.Event{
		events.NewToolCallStartEvent(callID, RenderToolName),
		events.NewToolCallArgsEvent(callID, string(args)),
		events.NewToolCallEndEvent(callID),
	} {
		if err := s.emit(ev); err != nil {
			return err
		}
	}
	return nil
}
