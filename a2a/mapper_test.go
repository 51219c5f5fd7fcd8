package a2a

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapperGeneratesIDs(t *testing.T) {
	m := NewMapper("", "")
	assert.NotEmpty(t, m.TaskID())
	assert.NotEmpty(t, m.ContextID())
	assert.Equal(t, TaskStateSubmitted, m.State())
}

func TestMapperEvents(t *testing.T) {
	m := NewMapper("task-1", "ctx-1")

	w := m.Working("Processing your request...")
	assert.Equal(t, TaskStateWorking, w.Status.State)
	assert.False(t, w.Final)
	require.NotNil(t, w.Status.Message)
	assert.Equal(t, RoleAgent, w.Status.Message.Role)
	assert.Equal(t, "Processing your request...", w.Status.Message.TextContent())
	assert.Equal(t, "task-1", w.Status.Message.TaskID)
	assert.Equal(t, TaskStateWorking, m.State())

	msg := m.AgentMessage(NewTextPart("Here are some places."))
	assert.Equal(t, "ctx-1", msg.ContextID)

	f := m.Final(TaskStateCompleted, &msg)
	assert.True(t, f.Final)
	assert.Equal(t, msg.MessageID, f.Status.Message.MessageID)
	assert.Equal(t, TaskStateCompleted, m.State())

	c := m.Canceled()
	assert.True(t, c.Final)
	assert.Nil(t, c.Status.Message)

	task := m.Task()
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, TaskStateCanceled, task.Status.State)
}
