package anthropic

import (
	"errors"
	"testing"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages(t *testing.T) {
	msgs, system := convertMessages([]ai.Message{
		ai.NewSystemMessage("You are a restaurant assistant."),
		ai.NewSystemMessage(""),
		ai.NewUserMessage("find chinese food"),
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "toolu_1", Name: "get_restaurants", Arguments: `{"cuisine":"Chinese"}`}}},
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "toolu_1", Content: "[]"}),
		{Role: ai.RoleAssistant},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "You are a restaurant assistant.", system[0].Text)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]ai.Tool{{
		Name:        "get_restaurants",
		Description: "Find restaurants",
		Parameters:  []byte(`{"type":"object","properties":{"cuisine":{"type":"string"}},"required":["cuisine"]}`),
	}})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, []string{"cuisine"}, tools[0].OfTool.InputSchema.Required)

	assert.NotNil(t, convertToolChoice(ai.ToolChoiceRequired).OfAny)
	assert.NotNil(t, convertToolChoice(ai.ToolChoiceNone).OfNone)
	assert.NotNil(t, convertToolChoice(ai.ToolChoiceAuto).OfAuto)
}

func TestWrapErrorPassesThroughPlainErrors(t *testing.T) {
	assert.Nil(t, wrapError(nil))
	plain := errors.New("dial tcp: connection refused")
	assert.Equal(t, plain, wrapError(plain))
}

func TestModelOption(t *testing.T) {
	assert.Equal(t, DefaultModel, New("k").model)
	assert.Equal(t, "claude-opus-4-1", New("k", WithModel("claude-opus-4-1")).model)
}
