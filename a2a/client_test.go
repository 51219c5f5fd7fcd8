package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendMessage(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(ExtensionsHeader)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, MethodMessageSend, req.Method)

		var params SendMessageParams
		require.NoError(t, json.Unmarshal(req.Params, &params))
		assert.Equal(t, "find food", params.Message.TextContent())
		assert.Equal(t, "ctx-1", params.Message.ContextID)

		task := NewTask("t1", "ctx-1")
		task.Status = NewTaskStatus(TaskStateInputRequired, nil)
		_ = json.NewEncoder(w).Encode(NewResponse(req.ID, task))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithExtensions("https://a2ui.org/a2a-extension/a2ui/v0.8"))
	task, err := c.SendText(context.Background(), "ctx-1", "find food")
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, TaskStateInputRequired, task.Status.State)
	assert.Equal(t, "https://a2ui.org/a2a-extension/a2ui/v0.8", gotHeader)
}

func TestClientRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(NewErrorResponse(req.ID, NewRPCError(CodeTaskNotFound, "task %s not found", "x")))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetTask(context.Background(), "x")
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, CodeTaskNotFound, rpcErr.Code)
}

func TestClientStreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, MethodMessageStream, req.Method)

		w.Header().Set("Content-Type", "text/event-stream")
		m := NewMapper("t1", "c1")
		msg := m.AgentMessage(NewTextPart("done"))
		for _, result := range []any{m.Task(), m.Working("Processing your request..."), msg, m.Final(TaskStateCompleted, &msg)} {
			data, _ := json.Marshal(NewResponse(req.ID, result))
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var frames []StreamResponse
	err := NewClient(srv.URL).StreamMessage(context.Background(),
		SendMessageParams{Message: NewMessage(RoleUser, NewTextPart("hi"))},
		func(sr StreamResponse) error {
			frames = append(frames, sr)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, frames, 4)

	require.NotNil(t, frames[0].Task)
	assert.Equal(t, TaskStateSubmitted, frames[0].Task.Status.State)
	assert.IsType(t, TaskStatusUpdateEvent{}, frames[1].Event)
	assert.IsType(t, Message{}, frames[2].Event)
	final := frames[3].Event.(TaskStatusUpdateEvent)
	assert.True(t, final.Final)
	assert.Equal(t, TaskStateCompleted, final.Status.State)
}

func TestClientCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/agent-card.json", r.URL.Path)
		_ = json.NewEncoder(w).Encode(AgentCard{Name: "Restaurant Agent", Version: "1.0.0"})
	}))
	defer srv.Close()

	card, err := NewClient(srv.URL).Card(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Restaurant Agent", card.Name)
}

func TestCanonicalMethod(t *testing.T) {
	assert.Equal(t, MethodMessageSend, CanonicalMethod(MethodLegacySend))
	assert.Equal(t, MethodMessageStream, CanonicalMethod(MethodLegacySendSubscribe))
	assert.Equal(t, MethodTasksGet, CanonicalMethod(MethodTasksGet))
}
