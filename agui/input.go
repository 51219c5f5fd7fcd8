package agui

import (
	"errors"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/executor"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
type RunAgentInput struct {
	ThreadID       string           `json:"thread_id"`
	RunID          string           `json:"run_id"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"`
	Context        []any            `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps map[string]any   `json:"forwarded_props,omitempty"`
}

// ErrNoInput is returned when the input has neither user text nor a UI action.
var ErrNoInput = errors.New("agui: no user message or action provided")

// actionKeys are the forwarded_props fields that may carry a UI action.
var actionKeys = []string{"userAction", "a2uiAction"}

// Request converts the input into a turn request. The thread becomes the
// A2A context and the run becomes the task.
func (r *RunAgentInput) Request() (executor.RequestContext, error) {
	var parts []a2a.Part
	if text, ok := LastUserText(r.Messages); ok {
		parts = append(parts, a2a.NewTextPart(text))
	}
	for _, key := range actionKeys {
		if action, ok := r.ForwardedProps[key]; ok && action != nil {
			parts = append(parts, a2a.NewDataPart(map[string]any{"userAction": action}, a2ui.PartMetadata()))
			break
		}
	}
	if len(parts) == 0 {
		return executor.RequestContext{}, ErrNoInput
	}

	msg := a2a.NewMessage(a2a.RoleUser, parts...)
	msg.ContextID = r.ThreadID
	msg.TaskID = r.RunID
	return executor.RequestContext{
		TaskID:     r.RunID,
		ContextID:  r.ThreadID,
		Message:    msg,
		Extensions: []string{a2ui.ExtensionURI},
	}, nil
}
