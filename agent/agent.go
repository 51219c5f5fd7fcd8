package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/chat"
	"github.com/spetersoncode/tablebridge/event"
	"github.com/spetersoncode/tablebridge/internal/telemetry"
	"github.com/spetersoncode/tablebridge/tool"
	"golang.org/x/sync/errgroup"
)

// ToolObserver is notified after every tool execution.
type ToolObserver func(call ai.ToolCall, result ai.ToolResult)

// Agent orchestrates autonomous tool-calling conversations.
type Agent struct {
	chatClient chat.Client
	registry   *tool.Registry
	observer   ToolObserver
	logger     *slog.Logger
}

// New creates an Agent over the given chat client and tool registry.
func New(c chat.Client, registry *tool.Registry) *Agent {
	return &Agent{
		chatClient: c,
		registry:   registry,
		logger:     slog.Default(),
	}
}

// WithObserver returns a copy of a that reports tool executions to fn.
func (a *Agent) WithObserver(fn ToolObserver) *Agent {
	cp := *a
	cp.observer = fn
	return &cp
}

// WithLogger returns a copy of a that logs through logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	cp := *a
	cp.logger = logger
	return &cp
}

// Registry returns the tool registry used by the agent.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Run executes the loop to completion and collects the outcome.
func (a *Agent) Run(ctx context.Context, messages []ai.Message, opts ...Option) (*Result, error) {
	return Collect(ctx, a.RunStream(ctx, messages, opts...), nil)
}

// Collect drains events into a Result. fn, when non-nil, sees every event
// before it is folded in.
func Collect(ctx context.Context, events <-chan event.Event, fn func(event.Event)) (*Result, error) {
	result := &Result{}
	var pending []ai.ToolResult

	flush := func() {
		if len(pending) > 0 {
			result.Messages = append(result.Messages, ai.NewToolResultMessage(pending...))
			pending = nil
		}
	}

	for ev := range events {
		if fn != nil {
			fn(ev)
		}
		if ev.Step > result.Steps {
			result.Steps = ev.Step
		}
		switch ev.Type {
		case event.StepStart:
			flush()
		case event.StepEnd:
			if ev.Response != nil {
				result.TotalUsage = result.TotalUsage.Add(ev.Response.Usage)
				result.Messages = append(result.Messages, ai.Message{
					Role:      ai.RoleAssistant,
					Content:   ev.Response.Content,
					ToolCalls: ev.Response.ToolCalls,
				})
			}
		case event.ToolCallResult:
			if ev.ToolResult != nil {
				pending = append(pending, *ev.ToolResult)
			}
		case event.RunEnd:
			result.Response = ev.Response
			result.Termination = TerminationReason(ev.Message)
		case event.RunError:
			result.Error = ev.Error
			result.Termination = TerminationError
		}
	}
	flush()

	if result.Error == nil && result.Termination == "" {
		result.Error = ctx.Err()
		if result.Error == nil {
			result.Error = ErrEmptyStream
		}
		result.Termination = TerminationCancelled
	}
	return result, result.Error
}

// RunStream executes the loop in a goroutine and streams its events.
// The channel is closed when the run ends. Terminal events (RunEnd,
// RunError) are always delivered unless ctx is done.
func (a *Agent) RunStream(ctx context.Context, messages []ai.Message, opts ...Option) <-chan event.Event {
	eventCh := event.NewChannel()
	go a.runLoop(ctx, messages, eventCh, opts...)
	return eventCh
}

func (a *Agent) runLoop(ctx context.Context, messages []ai.Message, eventCh chan<- event.Event, opts ...Option) {
	defer close(eventCh)

	options := ApplyOptions(opts...)
	outer := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	event.Emit(eventCh, event.Event{Type: event.RunStart})

	chatOpts := append([]ai.Option{ai.WithTools(a.registry.Tools())}, options.ChatOptions...)
	history := append([]ai.Message(nil), messages...)

	for step := 1; ; step++ {
		if err := ctx.Err(); err != nil {
			event.Send(outer, eventCh, event.Event{Type: event.RunError, Step: step, Error: err})
			return
		}
		if options.MaxSteps > 0 && step > options.MaxSteps {
			event.Send(outer, eventCh, event.Event{Type: event.RunError, Step: step, Error: ErrMaxStepsReached})
			return
		}

		event.Emit(eventCh, event.Event{Type: event.StepStart, Step: step})

		response, err := a.executeStep(ctx, history, chatOpts, step, eventCh)
		if err != nil {
			event.Send(outer, eventCh, event.Event{Type: event.RunError, Step: step, Error: err})
			return
		}

		event.Send(outer, eventCh, event.Event{Type: event.StepEnd, Step: step, Response: response})

		if !response.HasToolCalls() {
			event.Send(outer, eventCh, event.Event{
				Type:     event.RunEnd,
				Step:     step,
				Response: response,
				Message:  string(TerminationComplete),
			})
			return
		}

		results := a.processToolCalls(ctx, response.ToolCalls, options, step, eventCh)
		history = append(history,
			ai.Message{Role: ai.RoleAssistant, Content: response.Content, ToolCalls: response.ToolCalls},
			ai.NewToolResultMessage(results...),
		)
	}
}

func (a *Agent) executeStep(ctx context.Context, messages []ai.Message, chatOpts []ai.Option, step int, eventCh chan<- event.Event) (*ai.Response, error) {
	streamCh, err := a.chatClient.ChatStream(ctx, messages, chatOpts...)
	if err != nil {
		return nil, err
	}

	messageID := fmt.Sprintf("msg_%d_%d", step, time.Now().UnixNano())
	started := false
	var response *ai.Response

	for ev := range streamCh {
		if ev.Err != nil {
			return nil, ev.Err
		}
		if !started && (ev.Delta != "" || ev.Done) {
			event.Emit(eventCh, event.Event{Type: event.MessageStart, Step: step, MessageID: messageID})
			started = true
		}
		if ev.Delta != "" {
			event.Emit(eventCh, event.Event{Type: event.MessageDelta, Step: step, MessageID: messageID, Delta: ev.Delta})
		}
		if ev.Done {
			response = ev.Response
		}
	}

	if response == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyStream
	}
	event.Emit(eventCh, event.Event{Type: event.MessageEnd, Step: step, MessageID: messageID, Response: response})
	return response, nil
}

// processToolCalls executes calls and returns their results in call order.
func (a *Agent) processToolCalls(ctx context.Context, calls []ai.ToolCall, options *Options, step int, eventCh chan<- event.Event) []ai.ToolResult {
	for i := range calls {
		tc := calls[i]
		event.Send(ctx, eventCh, event.Event{Type: event.ToolCallStart, Step: step, ToolCall: &tc})
		event.Emit(eventCh, event.Event{Type: event.ToolCallArgs, Step: step, ToolCall: &tc})
	}

	results := make([]ai.ToolResult, len(calls))
	if !options.ParallelToolCalls || len(calls) == 1 {
		for i, tc := range calls {
			results[i] = a.executeToolCall(ctx, tc, options, step, eventCh)
		}
		return results
	}

	var g errgroup.Group
	for i, tc := range calls {
		g.Go(func() error {
			results[i] = a.executeToolCall(ctx, tc, options, step, eventCh)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Agent) executeToolCall(ctx context.Context, tc ai.ToolCall, options *Options, step int, eventCh chan<- event.Event) ai.ToolResult {
	execCtx := ctx
	if options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, options.HandlerTimeout)
		defer cancel()
	}
	execCtx, span := telemetry.StartToolCallSpan(execCtx, tc.ID, tc.Name)

	result, err := a.registry.Execute(execCtx, tc)
	if err != nil {
		result = ai.ToolResult{ToolCallID: tc.ID, Name: tc.Name, Content: err.Error(), IsError: true}
	}
	var spanErr error
	if result.IsError {
		spanErr = errors.New(result.Content)
		a.logger.Warn("tool call failed", "tool", tc.Name, "call_id", tc.ID, "error", result.Content)
	}
	telemetry.End(span, spanErr)

	if a.observer != nil {
		a.observer(tc, result)
	}

	event.Emit(eventCh, event.Event{Type: event.ToolCallEnd, Step: step, ToolCall: &tc})
	event.Send(ctx, eventCh, event.Event{Type: event.ToolCallResult, Step: step, ToolCall: &tc, ToolResult: &result})
	return result
}
