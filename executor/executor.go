// Package executor runs A2A turns against a streaming agent.
//
// An Executor negotiates the A2UI extension, turns the inbound message into
// a query, relays the agent's progress as working status updates and, when
// the agent finishes, publishes the final message followed by the terminal
// status update. Everything goes to the caller through an a2a.EventSink.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/internal/cache"
	"github.com/spetersoncode/tablebridge/internal/metrics"
	"github.com/spetersoncode/tablebridge/internal/telemetry"
)

var (
	// ErrStreamTimeout is reported when the agent does not finish within
	// the configured stream timeout.
	ErrStreamTimeout = errors.New("stream timeout")
	// ErrStreamClosed is reported when the agent stream ends without a
	// final item.
	ErrStreamClosed = errors.New("agent stream closed without a final response")
)

// Agent produces the stream of one turn. The channel must be closed once
// the final or failed item has been sent, and sends must stop when ctx is
// done.
type Agent interface {
	Stream(ctx context.Context, query, contextID string, ui bool) <-chan ai.StreamItem
}

// RequestContext is the inbound side of a turn.
type RequestContext struct {
	TaskID    string
	ContextID string
	Message   a2a.Message
	// Extensions are the extension identifiers the caller requested.
	Extensions []string
}

// Executor runs turns. It is safe for concurrent use.
type Executor struct {
	agent         Agent
	streamTimeout time.Duration
	policy        CompletionPolicy
	logger        *slog.Logger
	metrics       *metrics.Metrics
	outcomes      OutcomeStore
	outcomeTTL    time.Duration
	ownedCache    *cache.Cache

	mu    sync.Mutex
	turns map[string]*turn
}

// New creates an Executor. Without WithOutcomeStore the executor keeps
// outcomes in a private cache released by Close.
func New(agent Agent, opts ...Option) *Executor {
	e := &Executor{
		agent:      agent,
		policy:     DefaultCompletionPolicy,
		logger:     slog.Default(),
		outcomeTTL: DefaultOutcomeTTL,
		turns:      make(map[string]*turn),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.outcomes == nil {
		c, err := cache.New(1 << 20)
		if err != nil {
			panic(fmt.Sprintf("executor: outcome cache: %v", err))
		}
		e.ownedCache = c
		e.outcomes = c
	}
	return e
}

// Close releases the private outcome cache, if any.
func (e *Executor) Close() {
	if e.ownedCache != nil {
		e.ownedCache.Close()
	}
}

// Execute runs one turn and returns once the sink has been finished.
func (e *Executor) Execute(ctx context.Context, req RequestContext, sink a2a.EventSink) {
	start := time.Now()
	if req.ContextID == "" {
		req.ContextID = uuid.NewString()
	}
	mapper := a2a.NewMapper(req.TaskID, req.ContextID)
	req.TaskID = mapper.TaskID()

	declared := append(append([]string(nil), req.Extensions...), req.Message.Extensions...)
	useUI := a2ui.ShouldActivate(declared)

	logger := e.logger.With("task_id", req.TaskID, "context_id", req.ContextID)
	ctx, span := telemetry.StartTurnSpan(ctx, req.TaskID, req.ContextID, useUI)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := &turn{
		taskID:    req.TaskID,
		contextID: req.ContextID,
		sink:      a2a.NewGuardedSink(sink),
		cancel:    cancel,
	}
	e.register(t)
	defer e.unregister(t)
	e.metrics.TurnStarted()

	action, query := e.query(logger, req.Message)
	logger.Info("turn started", "ui", useUI, "query", truncate(query, 200))

	r := &run{
		exec:   e,
		turn:   t,
		mapper: mapper,
		logger: logger,
		action: action,
		ui:     useUI,
	}
	state, err := r.drive(ctx, e.agent.Stream(streamCtx, query, req.ContextID, useUI))

	telemetry.SetOutcome(span, string(state))
	telemetry.End(span, err)
	e.metrics.TurnFinished(string(state), time.Since(start))
	logger.Info("turn finished",
		"state", state,
		"duration_ms", time.Since(start).Milliseconds(),
		"events_sent", r.sent,
	)
}

// query picks the UI action, else the first text part, else "".
func (e *Executor) query(logger *slog.Logger, msg a2a.Message) (*a2ui.UserAction, string) {
	if action, ok := a2ui.ExtractUserAction(msg.Parts); ok {
		logger.Info("received ui action", "action", action.ActionName)
		return action, a2ui.BuildQuery(*action)
	}
	texts := msg.Texts()
	if len(texts) == 0 {
		return nil, ""
	}
	if len(texts) > 1 {
		logger.Debug("ignoring extra text parts", "count", len(texts)-1)
	}
	return nil, texts[0]
}

// Cancel cancels the turn of taskID and reports the outcome on sink, which
// is always finished. A task whose turn already ended gets no event.
func (e *Executor) Cancel(ctx context.Context, taskID string, sink a2a.EventSink) {
	caller := a2a.NewGuardedSink(sink)
	defer caller.Finish()
	logger := e.logger.With("task_id", taskID)

	if t := e.lookup(taskID); t != nil {
		if !t.settle() {
			logger.Debug("cancel ignored, turn already settling")
			return
		}
		t.canceled.Store(true)
		ev := a2a.NewMapper(taskID, t.contextID).Canceled()
		if err := t.sink.Publish(ctx, ev); err != nil {
			logger.Warn("failed to publish cancel to turn", "error", err)
		}
		t.sink.Finish()
		t.cancel()
		e.recordOutcome(taskID, a2a.TaskStateCanceled)
		e.publishCancel(ctx, caller, ev, logger)
		logger.Info("turn canceled")
		return
	}

	if state, ok := e.Outcome(taskID); ok {
		logger.Debug("cancel ignored, task already finished", "state", state)
		return
	}

	ev := a2a.NewTaskStatusUpdateEvent(taskID, "", a2a.NewTaskStatus(a2a.TaskStateCanceled, nil), true)
	e.recordOutcome(taskID, a2a.TaskStateCanceled)
	e.publishCancel(ctx, caller, ev, logger)
	logger.Info("task canceled without a running turn")
}

func (e *Executor) publishCancel(ctx context.Context, sink a2a.EventSink, ev a2a.TaskStatusUpdateEvent, logger *slog.Logger) {
	if err := sink.Publish(ctx, ev); err != nil {
		logger.Warn("failed to publish cancel", "error", err)
		return
	}
	e.metrics.EventPublished(ev.EventKind())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
