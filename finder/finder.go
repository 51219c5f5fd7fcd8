// Package finder is the restaurant agent behind the A2A executor. It runs
// the tool-calling loop with the UI or text prompt, keeps per-context
// history and checks generated UI against the A2UI schema.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/agent"
	"github.com/spetersoncode/tablebridge/event"
	"github.com/spetersoncode/tablebridge/executor"
	"github.com/spetersoncode/tablebridge/internal/metrics"
	"github.com/spetersoncode/tablebridge/internal/session"
)

// Progress texts streamed as working updates.
const (
	ProgressStart  = "Processing your request..."
	ProgressLookup = "Looking up restaurants..."
	ProgressRetry  = "Refining the interface..."
)

// DefaultUIRetries is the number of regenerations after a UI response
// fails validation.
const DefaultUIRetries = 1

// Agent implements executor.Agent.
type Agent struct {
	loop       *agent.Agent
	sessions   *session.Store
	baseURL    string
	validator  *a2ui.Validator
	uiPrompt   string
	textPrompt string
	runOpts    []agent.Option
	uiRetries  int
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

var _ executor.Agent = (*Agent)(nil)

// Option configures an Agent.
type Option func(*Agent)

// WithBaseURL sets the public URL substituted into UI templates.
func WithBaseURL(url string) Option {
	return func(a *Agent) {
		a.baseURL = url
	}
}

// WithRunOptions passes options to every agent loop run.
func WithRunOptions(opts ...agent.Option) Option {
	return func(a *Agent) {
		a.runOpts = append(a.runOpts, opts...)
	}
}

// WithUIRetries sets how many times an invalid UI response is
// regenerated before it is sent anyway. Negative values count as zero.
func WithUIRetries(n int) Option {
	return func(a *Agent) {
		a.uiRetries = max(n, 0)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Agent) {
		a.metrics = m
	}
}

// New creates an Agent running loop with history kept in sessions.
func New(loop *agent.Agent, sessions *session.Store, opts ...Option) (*Agent, error) {
	a := &Agent{
		loop:      loop,
		sessions:  sessions,
		uiRetries: DefaultUIRetries,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	ui, err := UIPrompt(a.baseURL)
	if err != nil {
		return nil, err
	}
	text, err := TextPrompt()
	if err != nil {
		return nil, err
	}
	validator, err := a2ui.NewValidator()
	if err != nil {
		return nil, err
	}
	a.uiPrompt, a.textPrompt, a.validator = ui, text, validator
	return a, nil
}

// Stream runs one turn for contextID. The channel carries progress items
// and closes after exactly one complete or failed item, unless ctx ends
// first.
func (a *Agent) Stream(ctx context.Context, query, contextID string, ui bool) <-chan ai.StreamItem {
	out := make(chan ai.StreamItem, 8)
	go func() {
		defer close(out)
		send := func(item ai.StreamItem) bool {
			select {
			case out <- item:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(ai.Progress(ProgressStart)) {
			return
		}
		content, err := a.turn(ctx, query, contextID, ui, send)
		if err != nil {
			a.logger.Error("agent turn failed", "context_id", contextID, "error", err)
			send(ai.Failure(err))
			return
		}
		send(ai.Complete(content))
	}()
	return out
}

func (a *Agent) turn(ctx context.Context, query, contextID string, ui bool, send func(ai.StreamItem) bool) (string, error) {
	history, err := a.sessions.History(contextID)
	if err != nil {
		a.logger.Warn("dropping unreadable history", "context_id", contextID, "error", err)
		history = nil
	}

	prompt := a.textPrompt
	if ui {
		prompt = a.uiPrompt
	}
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.NewSystemMessage(prompt))
	messages = append(messages, history...)
	messages = append(messages, ai.NewUserMessage(query))

	produced := []ai.Message{ai.NewUserMessage(query)}

	result, err := a.run(ctx, messages, send)
	if err != nil {
		return "", err
	}
	produced = append(produced, result.Messages...)
	content := result.Content()

	if ui {
		conversation := append(slices.Clone(messages), result.Messages...)
		verr := a.validator.ValidateResponse(content)
		for attempt := 0; verr != nil; attempt++ {
			a.metrics.UIInvalid()
			if attempt >= a.uiRetries {
				a.logger.Warn("generated UI still invalid, sending as is", "context_id", contextID, "error", verr)
				break
			}
			a.logger.Warn("generated UI failed validation, regenerating",
				"context_id", contextID,
				"attempt", attempt+1,
				"error", verr,
			)
			send(ai.Progress(ProgressRetry))

			feedback := ai.NewUserMessage(retryFeedback(verr))
			conversation = append(conversation, feedback)
			next, err := a.run(ctx, conversation, send)
			if err != nil {
				return "", err
			}
			conversation = append(conversation, next.Messages...)
			produced = append(append(produced, feedback), next.Messages...)
			content = next.Content()
			verr = a.validator.ValidateResponse(content)
		}
	}

	if err := a.sessions.Append(contextID, produced...); err != nil {
		a.logger.Warn("history not saved", "context_id", contextID, "error", err)
	}
	return content, nil
}

func (a *Agent) run(ctx context.Context, messages []ai.Message, send func(ai.StreamItem) bool) (*agent.Result, error) {
	events := a.loop.RunStream(ctx, messages, a.runOpts...)
	return agent.Collect(ctx, events, func(ev event.Event) {
		switch ev.Type {
		case event.ToolCallStart:
			send(ai.Progress(ProgressLookup))
		case event.ToolCallResult:
			if ev.ToolCall != nil && ev.ToolResult != nil {
				a.metrics.ToolCall(ev.ToolCall.Name, ev.ToolResult.IsError)
			}
		}
	})
}

func retryFeedback(err error) string {
	return fmt.Sprintf("Your previous response did not pass A2UI schema validation: %v. "+
		"Regenerate the full response: conversational text, then %s, then a JSON list of A2UI messages that matches the schema.",
		err, a2ui.Delimiter)
}
