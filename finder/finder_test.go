package finder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/agent"
	"github.com/spetersoncode/tablebridge/internal/cache"
	"github.com/spetersoncode/tablebridge/internal/session"
	"github.com/spetersoncode/tablebridge/restaurant"
	"github.com/spetersoncode/tablebridge/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUI = `Here you go.
---a2ui_JSON---
[{"beginRendering": {"surfaceId": "default", "root": "root"}},
 {"surfaceUpdate": {"surfaceId": "default", "components": [{"id": "root", "component": {"Text": {"text": {"literalString": "hi"}}}}]}}]`

const invalidUI = `Here you go.
---a2ui_JSON---
[{"beginRendering": {"root": "root"}}]`

type scripted struct {
	content   string
	toolCalls []ai.ToolCall
	err       error
}

// scriptClient replays responses in order and records what it was sent.
type scriptClient struct {
	mu        sync.Mutex
	responses []scripted
	seen      [][]ai.Message
}

func (c *scriptClient) ChatStream(_ context.Context, messages []ai.Message, _ ...ai.Option) (<-chan ai.StreamEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, append([]ai.Message(nil), messages...))
	if len(c.seen) > len(c.responses) {
		return nil, errors.New("unexpected call")
	}
	resp := c.responses[len(c.seen)-1]
	if resp.err != nil {
		return nil, resp.err
	}
	ch := make(chan ai.StreamEvent, 2)
	ch <- ai.StreamEvent{Delta: resp.content}
	ch <- ai.StreamEvent{Done: true, Response: &ai.Response{Content: resp.content, ToolCalls: resp.toolCalls}}
	close(ch)
	return ch, nil
}

func (c *scriptClient) calls() [][]ai.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}

func newAgent(t *testing.T, client *scriptClient, opts ...Option) (*Agent, *session.Store) {
	t.Helper()
	c, err := cache.New(0)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	sessions := session.New(c, time.Minute)

	registry := tool.NewRegistry().Add(restaurant.Tool(restaurant.MustLoad(""), nil))
	opts = append([]Option{WithBaseURL("https://food.example.com")}, opts...)
	a, err := New(agent.New(client, registry), sessions, opts...)
	require.NoError(t, err)
	return a, sessions
}

func drain(t *testing.T, ch <-chan ai.StreamItem) []ai.StreamItem {
	t.Helper()
	var items []ai.StreamItem
	timeout := time.After(5 * time.Second)
	for {
		select {
		case item, ok := <-ch:
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func updates(items []ai.StreamItem) []string {
	var out []string
	for _, item := range items {
		if !item.IsComplete && item.Err == nil {
			out = append(out, item.Updates)
		}
	}
	return out
}

func TestStreamTextTurnWithToolCall(t *testing.T) {
	client := &scriptClient{responses: []scripted{
		{toolCalls: []ai.ToolCall{{ID: "c1", Name: restaurant.ToolName, Arguments: `{"cuisine":"Chinese","location":"New York","count":2}`}}},
		{content: "Xi'an Famous Foods and Han Dynasty."},
	}}
	a, sessions := newAgent(t, client)

	items := drain(t, a.Stream(context.Background(), "top 2 chinese in NY", "ctx-1", false))
	require.NotEmpty(t, items)
	last := items[len(items)-1]
	assert.True(t, last.IsComplete)
	assert.Equal(t, "Xi'an Famous Foods and Han Dynasty.", last.Content)
	assert.Equal(t, []string{ProgressStart, ProgressLookup}, updates(items))

	calls := client.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ai.RoleSystem, calls[0][0].Role)
	assert.NotContains(t, calls[0][0].Content, a2ui.Delimiter)
	assert.Equal(t, "top 2 chinese in NY", calls[0][1].Content)

	history, err := sessions.History("ctx-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, ai.RoleUser, history[0].Role)
	assert.Equal(t, ai.RoleTool, history[2].Role)
}

func TestStreamContinuesConversation(t *testing.T) {
	client := &scriptClient{responses: []scripted{
		{content: "first"},
		{content: "second"},
	}}
	a, _ := newAgent(t, client)

	drain(t, a.Stream(context.Background(), "q1", "ctx-1", false))
	drain(t, a.Stream(context.Background(), "q2", "ctx-1", false))

	calls := client.calls()
	require.Len(t, calls, 2)
	second := calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, "q1", second[1].Content)
	assert.Equal(t, "first", second[2].Content)
	assert.Equal(t, "q2", second[3].Content)
}

func TestStreamUIRegeneratesOnce(t *testing.T) {
	client := &scriptClient{responses: []scripted{
		{content: invalidUI},
		{content: validUI},
	}}
	a, _ := newAgent(t, client)

	items := drain(t, a.Stream(context.Background(), "top chinese in NY", "ctx-1", true))
	last := items[len(items)-1]
	require.True(t, last.IsComplete)
	assert.Equal(t, validUI, last.Content)
	assert.Equal(t, []string{ProgressStart, ProgressRetry}, updates(items))

	calls := client.calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0][0].Content, a2ui.Delimiter)
	retry := calls[1]
	feedback := retry[len(retry)-1]
	assert.Equal(t, ai.RoleUser, feedback.Role)
	assert.Contains(t, feedback.Content, "schema validation")
	assert.Equal(t, invalidUI, retry[len(retry)-2].Content)
}

func TestStreamUIGivesUpAfterRetry(t *testing.T) {
	client := &scriptClient{responses: []scripted{
		{content: invalidUI},
		{content: invalidUI},
	}}
	a, _ := newAgent(t, client)

	items := drain(t, a.Stream(context.Background(), "q", "ctx-1", true))
	last := items[len(items)-1]
	require.True(t, last.IsComplete)
	assert.Equal(t, invalidUI, last.Content)
	assert.Len(t, client.calls(), 2)
}

func TestStreamUIRetriesDisabled(t *testing.T) {
	client := &scriptClient{responses: []scripted{{content: invalidUI}}}
	a, _ := newAgent(t, client, WithUIRetries(0))

	items := drain(t, a.Stream(context.Background(), "q", "ctx-1", true))
	assert.Equal(t, invalidUI, items[len(items)-1].Content)
	assert.Equal(t, []string{ProgressStart}, updates(items))
	assert.Len(t, client.calls(), 1)
}

func TestStreamUIAcceptsValidFirstTime(t *testing.T) {
	client := &scriptClient{responses: []scripted{{content: validUI}}}
	a, _ := newAgent(t, client)

	items := drain(t, a.Stream(context.Background(), "q", "ctx-1", true))
	assert.True(t, items[len(items)-1].IsComplete)
	assert.Len(t, client.calls(), 1)
}

func TestStreamProviderFailure(t *testing.T) {
	client := &scriptClient{responses: []scripted{{err: ai.NewPermanentError("bad key", 401, nil)}}}
	a, sessions := newAgent(t, client)

	items := drain(t, a.Stream(context.Background(), "q", "ctx-1", false))
	last := items[len(items)-1]
	require.Error(t, last.Err)
	assert.False(t, last.IsComplete)
	assert.True(t, ai.IsPermanent(last.Err))

	history, err := sessions.History("ctx-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStreamStopsWhenCanceled(t *testing.T) {
	client := &scriptClient{responses: []scripted{{content: "late"}}}
	a, _ := newAgent(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	drain(t, a.Stream(ctx, "q", "ctx-1", false))
}

func TestPrompts(t *testing.T) {
	ui, err := UIPrompt("https://food.example.com/")
	require.NoError(t, err)
	assert.Contains(t, ui, a2ui.Delimiter)
	assert.Contains(t, ui, "---BEGIN SINGLE_COLUMN_LIST_EXAMPLE---")
	assert.Contains(t, ui, "---BEGIN CONFIRMATION_EXAMPLE---")
	assert.Contains(t, ui, "5 or fewer")
	assert.Contains(t, ui, `"beginRendering"`)
	assert.True(t, strings.HasPrefix(ui, "You are a helpful restaurant finding assistant."))

	text, err := TextPrompt()
	require.NoError(t, err)
	assert.Contains(t, text, "`get_restaurants`")
	assert.NotContains(t, text, a2ui.Delimiter)
}

func TestCard(t *testing.T) {
	card := Card("http://localhost:10002/")
	assert.Equal(t, "Restaurant Agent", card.Name)
	assert.Equal(t, "http://localhost:10002", card.URL)
	assert.True(t, card.Capabilities.Streaming)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "find_restaurants", card.Skills[0].ID)
	assert.Equal(t, a2ui.Extensions(), card.Capabilities.Extensions)
}
