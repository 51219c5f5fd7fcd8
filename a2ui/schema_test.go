package a2ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `[
  {"beginRendering": {"surfaceId": "default", "root": "root-column"}},
  {"surfaceUpdate": {"surfaceId": "default", "components": [
    {"id": "root-column", "component": {"Column": {"children": {"explicitList": ["title"]}}}},
    {"id": "title", "component": {"Text": {"text": {"literalString": "Top Restaurants"}}}}
  ]}},
  {"dataModelUpdate": {"surfaceId": "default", "path": "/", "contents": [{"key": "title", "valueString": "hi"}]}}
]`

func TestValidateResponse(t *testing.T) {
	v := MustNewValidator()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.ValidateResponse("Here you go"+Delimiter+"```json\n"+validPayload+"\n```"))
	})

	t.Run("no ui", func(t *testing.T) {
		assert.NoError(t, v.ValidateResponse("What city are you in?"))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := v.ValidateResponse(Delimiter + `[{"beginRendering": {"surfaceId": "default"}}]`)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 0, verr.Index)
		assert.NotEmpty(t, verr.Problems)
	})

	t.Run("unknown message type", func(t *testing.T) {
		err := v.ValidateResponse(Delimiter + `[{"beginRendering": {"surfaceId": "s", "root": "r"}}, {"renderEverything": {}}]`)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 1, verr.Index)
	})

	t.Run("empty components", func(t *testing.T) {
		err := v.ValidateResponse(Delimiter + `{"surfaceUpdate": {"surfaceId": "s", "components": []}}`)
		assert.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		assert.Error(t, v.ValidateResponse(Delimiter+"[{"))
	})

	t.Run("empty payload", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateResponse("text"+Delimiter+"  "), ErrNoMessages)
		assert.ErrorIs(t, v.ValidateResponse("text"+Delimiter+"[]"), ErrNoMessages)
	})
}

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, Schema(), "beginRendering")
}
