package a2a

import "github.com/google/uuid"

// Mapper builds the events of a single task, stamping each with the task
// and context ids and tracking the last state it produced.
type Mapper struct {
	taskID    string
	contextID string
	state     TaskState
}

// NewMapper creates a Mapper. Empty ids are replaced with fresh UUIDs.
func NewMapper(taskID, contextID string) *Mapper {
	if taskID == "" {
		taskID = uuid.NewString()
	}
	if contextID == "" {
		contextID = uuid.NewString()
	}
	return &Mapper{taskID: taskID, contextID: contextID, state: TaskStateSubmitted}
}

func (m *Mapper) TaskID() string    { return m.taskID }
func (m *Mapper) ContextID() string { return m.contextID }
func (m *Mapper) State() TaskState  { return m.state }

// AgentMessage creates an agent message bound to the task.
func (m *Mapper) AgentMessage(parts ...Part) Message {
	msg := NewMessage(RoleAgent, parts...)
	msg.TaskID = m.taskID
	msg.ContextID = m.contextID
	return msg
}

// StatusUpdate creates a status update and records state.
func (m *Mapper) StatusUpdate(state TaskState, msg *Message, final bool) TaskStatusUpdateEvent {
	m.state = state
	return NewTaskStatusUpdateEvent(m.taskID, m.contextID, NewTaskStatus(state, msg), final)
}

// Working creates a non-final working update carrying text.
func (m *Mapper) Working(text string) TaskStatusUpdateEvent {
	msg := m.AgentMessage(NewTextPart(text))
	return m.StatusUpdate(TaskStateWorking, &msg, false)
}

// Final creates the closing status update of a turn.
func (m *Mapper) Final(state TaskState, msg *Message) TaskStatusUpdateEvent {
	return m.StatusUpdate(state, msg, true)
}

// Canceled creates a final canceled update without a message.
func (m *Mapper) Canceled() TaskStatusUpdateEvent {
	return m.Final(TaskStateCanceled, nil)
}

// Task snapshots the mapper state as a task.
func (m *Mapper) Task() *Task {
	task := NewTask(m.taskID, m.contextID)
	task.Status = NewTaskStatus(m.state, nil)
	return task
}
