// Package event defines the lifecycle events an agent run streams to its
// consumer. The types line up with AG-UI so a run can be forwarded without
// translation loss.
package event

import (
	"context"
	"time"

	ai "github.com/spetersoncode/tablebridge"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle
const (
	RunStart Type = "run_start"
	RunEnd   Type = "run_end"
	RunError Type = "run_error"
)

// Step lifecycle
const (
	StepStart Type = "step_start"
	StepEnd   Type = "step_end"
)

// Message lifecycle
const (
	MessageStart Type = "message_start"
	MessageDelta Type = "message_delta"
	MessageEnd   Type = "message_end"
)

// Tool call lifecycle
const (
	ToolCallStart  Type = "tool_call_start"
	ToolCallArgs   Type = "tool_call_args"
	ToolCallEnd    Type = "tool_call_end"
	ToolCallResult Type = "tool_call_result"
)

// Event is one observable occurrence during a run.
type Event struct {
	Type Type

	// MessageID correlates MessageStart/Delta/End.
	MessageID string

	// Delta carries streamed text for MessageDelta.
	Delta string

	// Response is set on MessageEnd and RunEnd.
	Response *ai.Response

	ToolCall   *ai.ToolCall
	ToolResult *ai.ToolResult

	// Step is 1-indexed.
	Step int

	Error error

	// Message carries a termination reason on RunEnd.
	Message string

	Timestamp time.Time
}

// channelSize is the buffer of channels created by NewChannel.
const channelSize = 100

// NewChannel creates a buffered event channel.
func NewChannel() chan Event {
	return make(chan Event, channelSize)
}

// Emit stamps e and sends it without blocking. Events are dropped when the
// channel is full, so Emit suits purely informational events.
func Emit(ch chan<- Event, e Event) {
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// Send stamps e and blocks until it is delivered or ctx is done. Use it for
// events the consumer must observe, such as RunEnd or RunError.
func Send(ctx context.Context, ch chan<- Event, e Event) bool {
	e.Timestamp = time.Now()
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
