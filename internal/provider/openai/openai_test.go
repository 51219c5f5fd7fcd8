package openai

import (
	"net/http"
	"testing"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages([]ai.Message{
		ai.NewSystemMessage("be helpful"),
		ai.NewUserMessage("find food"),
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_restaurants", Arguments: `{}`}}},
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "call_1", Content: "[]"}),
		{Role: ai.RoleAssistant, Content: "none found"},
		{Role: ai.RoleUser},
	})

	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	assert.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.NotNil(t, msgs[3].OfTool)
	assert.NotNil(t, msgs[4].OfAssistant)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]ai.Tool{{
		Name:        "get_restaurants",
		Description: "Find restaurants",
		Parameters:  []byte(`{"type":"object","properties":{"cuisine":{"type":"string"}}}`),
	}})
	require.Len(t, tools, 1)
	assert.Equal(t, "get_restaurants", tools[0].Function.Name)
	assert.Equal(t, "object", tools[0].Function.Parameters["type"])

	assert.Equal(t, "required", convertToolChoice(ai.ToolChoiceRequired).OfAuto.Value)
	assert.Equal(t, "auto", convertToolChoice("").OfAuto.Value)
}

func TestCategorizeStatusCode(t *testing.T) {
	assert.Equal(t, ai.ErrorTransient, categorizeStatusCode(429))
	assert.Equal(t, ai.ErrorTransient, categorizeStatusCode(503))
	assert.Equal(t, ai.ErrorPermanent, categorizeStatusCode(401))
	assert.Equal(t, ai.ErrorUserInput, categorizeStatusCode(400))
	assert.Equal(t, ai.ErrorPermanent, categorizeStatusCode(418))
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, parseRetryAfter(nil))
	assert.Zero(t, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, parseRetryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	assert.Greater(t, parseRetryAfter(resp), 50*time.Minute)
}

func TestNewOptions(t *testing.T) {
	c := New("key", WithModel("google/gemini-2.5-flash"), WithBaseURL("https://openrouter.ai/api/v1"), WithHeader("X-Title", "Restaurant Agent"))
	assert.Equal(t, "google/gemini-2.5-flash", c.Model())
	assert.Len(t, c.reqOptions, 2)

	c = New("key", WithModel(""), WithHeader("X-Title", ""))
	assert.Equal(t, DefaultModel, c.Model())
	assert.Empty(t, c.reqOptions)
}
