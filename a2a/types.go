package a2a

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the originator of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
)

// IsTerminal reports whether no further work can happen on the task.
// An input-required task is paused, not terminal.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	}
	return false
}

// Event is a value published to an EventSink.
type Event interface {
	EventKind() string
}

// Message is one exchange between user and agent.
type Message struct {
	Kind       string         `json:"kind"`
	MessageID  string         `json:"messageId"`
	Role       Role           `json:"role"`
	Parts      []Part         `json:"parts"`
	ContextID  string         `json:"contextId,omitempty"`
	TaskID     string         `json:"taskId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Extensions []string       `json:"extensions,omitempty"`
}

// EventKind implements Event.
func (Message) EventKind() string { return "message" }

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, parts ...Part) Message {
	return Message{
		Kind:      "message",
		MessageID: uuid.NewString(),
		Role:      role,
		Parts:     parts,
	}
}

// Texts returns the text of every text part, in order.
func (m Message) Texts() []string {
	var texts []string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return texts
}

// TextContent returns the text parts joined together.
func (m Message) TextContent() string {
	var text string
	for _, t := range m.Texts() {
		text += t
	}
	return text
}

// UnmarshalJSON decodes the polymorphic parts list.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var tmp struct {
		alias
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	parts, err := unmarshalParts(tmp.Parts)
	if err != nil {
		return err
	}
	*m = Message(tmp.alias)
	m.Parts = parts
	return nil
}

// TaskStatus is the state of a task at a point in time.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// NewTaskStatus stamps a status with the current time.
func NewTaskStatus(state TaskState, msg *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Task is a unit of work tracked across turns of one conversation.
type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewTask creates a submitted task.
func NewTask(id, contextID string) *Task {
	return &Task{
		Kind:      "task",
		ID:        id,
		ContextID: contextID,
		Status:    NewTaskStatus(TaskStateSubmitted, nil),
	}
}

// Apply folds an event into the task: status updates replace the status,
// messages are appended to the history.
func (t *Task) Apply(e Event) {
	switch ev := e.(type) {
	case TaskStatusUpdateEvent:
		t.Status = ev.Status
	case Message:
		t.History = append(t.History, ev)
	}
}

// TaskStatusUpdateEvent reports a task status change.
type TaskStatusUpdateEvent struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// EventKind implements Event.
func (TaskStatusUpdateEvent) EventKind() string { return "status-update" }

// NewTaskStatusUpdateEvent creates a status update.
func NewTaskStatusUpdateEvent(taskID, contextID string, status TaskStatus, final bool) TaskStatusUpdateEvent {
	return TaskStatusUpdateEvent{
		Kind:      "status-update",
		TaskID:    taskID,
		ContextID: contextID,
		Status:    status,
		Final:     final,
	}
}
