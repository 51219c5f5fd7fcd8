package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamCall struct {
	query     string
	contextID string
	ui        bool
}

type mockAgent struct {
	mu       sync.Mutex
	calls    []streamCall
	streamFn func(ctx context.Context) <-chan ai.StreamItem
}

func (m *mockAgent) Stream(ctx context.Context, query, contextID string, ui bool) <-chan ai.StreamItem {
	m.mu.Lock()
	m.calls = append(m.calls, streamCall{query: query, contextID: contextID, ui: ui})
	m.mu.Unlock()
	return m.streamFn(ctx)
}

func (m *mockAgent) lastCall() streamCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// sendItems streams items and closes, stopping early when ctx is done.
func sendItems(items ...ai.StreamItem) func(ctx context.Context) <-chan ai.StreamItem {
	return func(ctx context.Context) <-chan ai.StreamItem {
		ch := make(chan ai.StreamItem)
		go func() {
			defer close(ch)
			for _, it := range items {
				select {
				case ch <- it:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch
	}
}

// blockAfter streams items and then waits for ctx before closing.
func blockAfter(items ...ai.StreamItem) func(ctx context.Context) <-chan ai.StreamItem {
	return func(ctx context.Context) <-chan ai.StreamItem {
		ch := make(chan ai.StreamItem)
		go func() {
			defer close(ch)
			for _, it := range items {
				select {
				case ch <- it:
				case <-ctx.Done():
					return
				}
			}
			<-ctx.Done()
		}()
		return ch
	}
}

func textRequest(taskID, text string, extensions ...string) RequestContext {
	return RequestContext{
		TaskID:     taskID,
		ContextID:  "ctx-1",
		Message:    a2a.NewMessage(a2a.RoleUser, a2a.NewTextPart(text)),
		Extensions: extensions,
	}
}

func actionRequest(taskID, name string, ctx map[string]any) RequestContext {
	return RequestContext{
		TaskID:    taskID,
		ContextID: "ctx-1",
		Message: a2a.NewMessage(a2a.RoleUser, a2a.NewDataPart(map[string]any{
			"userAction": map[string]any{"actionName": name, "context": ctx},
		}, nil)),
		Extensions: []string{a2ui.ExtensionURI},
	}
}

func statusUpdates(events []a2a.Event) []a2a.TaskStatusUpdateEvent {
	var out []a2a.TaskStatusUpdateEvent
	for _, e := range events {
		if su, ok := e.(a2a.TaskStatusUpdateEvent); ok {
			out = append(out, su)
		}
	}
	return out
}

func TestExecuteTextTurn(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(
		ai.Progress("Processing your request..."),
		ai.Progress("Looking up restaurants..."),
		ai.Complete("  Here are five places.  "),
	)}
	e := New(agent)
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), textRequest("task-1", "top 5 chinese in NY"), rec)

	require.True(t, rec.Finished())
	call := agent.lastCall()
	assert.Equal(t, "top 5 chinese in NY", call.query)
	assert.Equal(t, "ctx-1", call.contextID)
	assert.False(t, call.ui)

	events := rec.Events()
	require.Len(t, events, 4)

	w1 := events[0].(a2a.TaskStatusUpdateEvent)
	assert.Equal(t, a2a.TaskStateWorking, w1.Status.State)
	assert.False(t, w1.Final)
	assert.Equal(t, "Processing your request...", w1.Status.Message.TextContent())
	assert.Equal(t, "Looking up restaurants...", events[1].(a2a.TaskStatusUpdateEvent).Status.Message.TextContent())

	msg := events[2].(a2a.Message)
	assert.Equal(t, a2a.RoleAgent, msg.Role)
	assert.Equal(t, []a2a.Part{a2a.NewTextPart("Here are five places.")}, msg.Parts)

	final := events[3].(a2a.TaskStatusUpdateEvent)
	assert.True(t, final.Final)
	assert.Equal(t, a2a.TaskStateInputRequired, final.Status.State)
	assert.Equal(t, msg.MessageID, final.Status.Message.MessageID)
	assert.Equal(t, "task-1", final.TaskID)
	assert.Equal(t, "ctx-1", final.ContextID)

	state, ok := e.Outcome("task-1")
	require.True(t, ok)
	assert.Equal(t, a2a.TaskStateInputRequired, state)
	assert.False(t, e.InFlight("task-1"))
}

func TestExecuteSubmitBookingCompletes(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("Booked!" + a2ui.Delimiter + `[{"deleteSurface":{"surfaceId":"booking-form"}}]`))}
	e := New(agent)
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), actionRequest("task-2", a2ui.ActionSubmitBooking, map[string]any{
		"restaurantName":  "RedFarm",
		"partySize":       "2",
		"reservationTime": "8pm",
		"imageUrl":        "http://x/img.jpeg",
	}), rec)

	call := agent.lastCall()
	assert.True(t, call.ui)
	assert.Equal(t, "User submitted a booking for RedFarm for 2 people at 8pm with dietary requirements: None. The image URL is http://x/img.jpeg", call.query)

	events := rec.Events()
	require.Len(t, events, 2)
	msg := events[0].(a2a.Message)
	require.Len(t, msg.Parts, 2)
	assert.Equal(t, a2a.NewTextPart("Booked!"), msg.Parts[0])
	assert.True(t, a2ui.IsUIPart(msg.Parts[1]))

	final := events[1].(a2a.TaskStatusUpdateEvent)
	assert.Equal(t, a2a.TaskStateCompleted, final.Status.State)
	assert.True(t, final.Final)
}

func TestExecuteBookRestaurantQuery(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("form"))}
	e := New(agent)
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), actionRequest("task-3", a2ui.ActionBookRestaurant, map[string]any{"restaurantName": "Han Dynasty"}), rec)

	assert.Equal(t, "USER_WANTS_TO_BOOK: Han Dynasty, Address: Address not provided, ImageURL: ", agent.lastCall().query)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, a2a.TaskStateInputRequired, last.Status.State)
}

func TestExecuteMalformedUIDegradesToText(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("Hi" + a2ui.Delimiter + "{broken"))}
	e := New(agent)
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), textRequest("task-4", "hi", a2ui.ExtensionURI), rec)

	events := rec.Events()
	require.Len(t, events, 2)
	msg := events[0].(a2a.Message)
	assert.Equal(t, []string{"Hi", "{broken"}, msg.Texts())
	assert.Equal(t, a2a.TaskStateInputRequired, events[1].(a2a.TaskStatusUpdateEvent).Status.State)
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name   string
		stream func(ctx context.Context) <-chan ai.StreamItem
		opts   []Option
		want   string
	}{
		{
			name:   "stream error",
			stream: sendItems(ai.Progress("Processing your request..."), ai.Failure(errors.New("provider down"))),
			want:   "I'm sorry, I encountered an error: provider down",
		},
		{
			name:   "closed without final",
			stream: sendItems(ai.Progress("Processing your request...")),
			want:   "I'm sorry, I encountered an error: " + ErrStreamClosed.Error(),
		},
		{
			name:   "timeout",
			stream: blockAfter(ai.Progress("Processing your request...")),
			opts:   []Option{WithStreamTimeout(20 * time.Millisecond)},
			want:   "I'm sorry, I encountered an error: stream timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&mockAgent{streamFn: tt.stream}, tt.opts...)
			defer e.Close()

			rec := a2a.NewRecorder()
			e.Execute(context.Background(), textRequest("task-f", "hi"), rec)
			require.True(t, rec.Finished())

			events := rec.Events()
			require.GreaterOrEqual(t, len(events), 2)

			msg := events[len(events)-2].(a2a.Message)
			assert.Equal(t, tt.want, msg.TextContent())

			final := events[len(events)-1].(a2a.TaskStatusUpdateEvent)
			assert.Equal(t, a2a.TaskStateFailed, final.Status.State)
			assert.True(t, final.Final)
			assert.Equal(t, msg.MessageID, final.Status.Message.MessageID)

			for _, su := range statusUpdates(events[:len(events)-2]) {
				assert.Equal(t, a2a.TaskStateWorking, su.Status.State)
			}
		})
	}
}

func TestExecuteStopsAfterFinalItem(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("first"), ai.Progress("late"), ai.Complete("second"))}
	e := New(agent)
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), textRequest("task-5", "hi"), rec)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].(a2a.Message).TextContent())
}

type failingSink struct {
	*a2a.Recorder
	failOn int
	n      int
}

func (s *failingSink) Publish(ctx context.Context, e a2a.Event) error {
	s.n++
	if s.n == s.failOn {
		return errors.New("client went away")
	}
	return s.Recorder.Publish(ctx, e)
}

func TestExecutePublishErrorFails(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Progress("a"), ai.Progress("b"), ai.Complete("done"))}
	e := New(agent)
	defer e.Close()

	sink := &failingSink{Recorder: a2a.NewRecorder(), failOn: 1}
	e.Execute(context.Background(), textRequest("task-6", "hi"), sink)

	require.True(t, sink.Finished())
	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, a2a.TaskStateFailed, last.Status.State)
	assert.Contains(t, last.Status.Message.TextContent(), "client went away")
}

func TestExecuteCompletionPolicy(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("ok"))}
	e := New(agent, WithCompletionPolicy(func(action *a2ui.UserAction, ui bool) a2a.TaskState {
		return a2a.TaskStateCompleted
	}))
	defer e.Close()

	rec := a2a.NewRecorder()
	e.Execute(context.Background(), textRequest("task-7", "thanks, bye"), rec)
	last, _ := rec.Last()
	assert.Equal(t, a2a.TaskStateCompleted, last.Status.State)
}

func TestExecuteQuerySelection(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("ok"))}
	e := New(agent)
	defer e.Close()

	req := RequestContext{
		TaskID: "task-8",
		Message: a2a.NewMessage(a2a.RoleUser,
			a2a.NewTextPart("first"),
			a2a.NewTextPart("second"),
		),
	}
	e.Execute(context.Background(), req, a2a.NewRecorder())
	call := agent.lastCall()
	assert.Equal(t, "first", call.query)
	assert.NotEmpty(t, call.contextID)

	e.Execute(context.Background(), RequestContext{TaskID: "task-9", Message: a2a.NewMessage(a2a.RoleUser)}, a2a.NewRecorder())
	assert.Equal(t, "", agent.lastCall().query)
}

func TestExecuteExtensionFromMessage(t *testing.T) {
	agent := &mockAgent{streamFn: sendItems(ai.Complete("ok"))}
	e := New(agent)
	defer e.Close()

	msg := a2a.NewMessage(a2a.RoleUser, a2a.NewTextPart("hi"))
	msg.Extensions = []string{a2ui.LegacyExtensionURI}
	e.Execute(context.Background(), RequestContext{TaskID: "task-10", Message: msg}, a2a.NewRecorder())
	assert.True(t, agent.lastCall().ui)
}

func TestCancelInFlight(t *testing.T) {
	agent := &mockAgent{streamFn: blockAfter(ai.Progress("Processing your request..."))}
	e := New(agent)
	defer e.Close()

	turnSink := a2a.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Execute(context.Background(), textRequest("task-c", "hi"), turnSink)
	}()

	require.Eventually(t, func() bool { return len(turnSink.Events()) == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, e.InFlight("task-c"))

	caller := a2a.NewRecorder()
	e.Cancel(context.Background(), "task-c", caller)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("execute did not return after cancel")
	}

	require.True(t, turnSink.Finished())
	events := turnSink.Events()
	require.Len(t, events, 2)
	final := events[1].(a2a.TaskStatusUpdateEvent)
	assert.Equal(t, a2a.TaskStateCanceled, final.Status.State)
	assert.True(t, final.Final)
	assert.Equal(t, "ctx-1", final.ContextID)

	require.True(t, caller.Finished())
	callerEvents := caller.Events()
	require.Len(t, callerEvents, 1)
	assert.Equal(t, a2a.TaskStateCanceled, callerEvents[0].(a2a.TaskStatusUpdateEvent).Status.State)

	state, ok := e.Outcome("task-c")
	require.True(t, ok)
	assert.Equal(t, a2a.TaskStateCanceled, state)

	again := a2a.NewRecorder()
	e.Cancel(context.Background(), "task-c", again)
	assert.True(t, again.Finished())
	assert.Empty(t, again.Events())
}

func TestCancelUnknownTask(t *testing.T) {
	e := New(&mockAgent{})
	defer e.Close()

	first := a2a.NewRecorder()
	e.Cancel(context.Background(), "ghost", first)
	require.True(t, first.Finished())
	require.Len(t, first.Events(), 1)
	ev := first.Events()[0].(a2a.TaskStatusUpdateEvent)
	assert.Equal(t, "ghost", ev.TaskID)
	assert.Equal(t, a2a.TaskStateCanceled, ev.Status.State)
	assert.True(t, ev.Final)

	second := a2a.NewRecorder()
	e.Cancel(context.Background(), "ghost", second)
	assert.True(t, second.Finished())
	assert.Empty(t, second.Events())
}

func TestCancelAfterCompletion(t *testing.T) {
	e := New(&mockAgent{streamFn: sendItems(ai.Complete("done"))})
	defer e.Close()

	turnSink := a2a.NewRecorder()
	e.Execute(context.Background(), textRequest("task-d", "hi"), turnSink)
	before := len(turnSink.Events())

	caller := a2a.NewRecorder()
	e.Cancel(context.Background(), "task-d", caller)
	assert.True(t, caller.Finished())
	assert.Empty(t, caller.Events())
	assert.Len(t, turnSink.Events(), before)

	state, _ := e.Outcome("task-d")
	assert.Equal(t, a2a.TaskStateInputRequired, state)
}

func TestDefaultCompletionPolicy(t *testing.T) {
	assert.Equal(t, a2a.TaskStateInputRequired, DefaultCompletionPolicy(nil, false))
	assert.Equal(t, a2a.TaskStateInputRequired, DefaultCompletionPolicy(&a2ui.UserAction{ActionName: a2ui.ActionBookRestaurant}, true))
	assert.Equal(t, a2a.TaskStateCompleted, DefaultCompletionPolicy(&a2ui.UserAction{ActionName: a2ui.ActionSubmitBooking}, true))
}
