package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoArgs struct {
	Text  string `json:"text" jsonschema:"description=Text to echo"`
	Times int    `json:"times,omitempty" jsonschema:"description=Repetitions"`
}

func echo(_ context.Context, args echoArgs) (string, error) {
	if args.Text == "" {
		return "", errors.New("text is required")
	}
	return fmt.Sprintf("%s x%d", args.Text, args.Times), nil
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry().Add(
		Func("echo", "Echo text", echo),
		Func("alpha", "First alphabetically", echo),
	)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"alpha", "echo"}, r.Names())

	got, ok := r.GetTool("echo")
	require.True(t, ok)
	assert.Equal(t, "Echo text", got.Description)

	_, ok = r.GetTool("missing")
	assert.False(t, ok)
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry().Add(Func("echo", "Echo", echo))

	err := r.Register(ai.Tool{Name: "echo"}, nil)
	var dup *ErrToolAlreadyRegistered
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "tool: already registered: echo", err.Error())

	assert.Panics(t, func() { r.Add(Func("echo", "Echo", echo)) })
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry().Add(Func("echo", "Echo", echo))
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "call_1", Name: "echo", Arguments: `{"text":"hi","times":2}`})
		require.NoError(t, err)
		assert.Equal(t, ai.ToolResult{ToolCallID: "call_1", Name: "echo", Content: "hi x2"}, res)
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "call_2", Name: "echo", Arguments: `{}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "text is required", res.Content)
	})

	t.Run("bad arguments become error result", func(t *testing.T) {
		res, err := r.Execute(ctx, ai.ToolCall{ID: "call_3", Name: "echo", Arguments: `{"text":`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "tool: echo: invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Execute(ctx, ai.ToolCall{ID: "call_4", Name: "nope"})
		var nf *ErrToolNotFound
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nope", nf.Name)
	})
}

func TestSchemaFor(t *testing.T) {
	raw, err := SchemaFor[echoArgs]()
	require.NoError(t, err)

	var schema struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
		Version    string                    `json:"$schema"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Version)
	assert.Equal(t, []string{"text"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["text"]["type"])
	assert.Equal(t, "Text to echo", schema.Properties["text"]["description"])
	assert.Equal(t, "integer", schema.Properties["times"]["type"])
}
