package a2ui

import (
	"testing"

	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFinalResponse(t *testing.T) {
	t.Run("text and array", func(t *testing.T) {
		parts, err := SplitFinalResponse("Here you go\n---a2ui_JSON---\n[{\"a\":1},{\"b\":2}]")
		require.NoError(t, err)
		require.Len(t, parts, 3)
		assert.Equal(t, a2a.NewTextPart("Here you go"), parts[0])
		assert.Equal(t, map[string]any{"a": float64(1)}, parts[1].(a2a.DataPart).Data)
		assert.Equal(t, map[string]any{"b": float64(2)}, parts[2].(a2a.DataPart).Data)
		assert.True(t, IsUIPart(parts[1]))
	})

	t.Run("fenced single object", func(t *testing.T) {
		parts, err := SplitFinalResponse("Booked!---a2ui_JSON---```json\n{\"deleteSurface\":{\"surfaceId\":\"x\"}}\n```")
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, map[string]any{"deleteSurface": map[string]any{"surfaceId": "x"}}, parts[1].(a2a.DataPart).Data)
	})

	t.Run("scalar payload", func(t *testing.T) {
		parts, err := SplitFinalResponse("---a2ui_JSON---42")
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, float64(42), parts[0].(a2a.DataPart).Data)
	})

	t.Run("malformed payload degrades to text", func(t *testing.T) {
		parts, err := SplitFinalResponse("Hi---a2ui_JSON--- {not json")
		assert.Error(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, a2a.NewTextPart("Hi"), parts[0])
		assert.Equal(t, a2a.NewTextPart(" {not json"), parts[1])
	})

	t.Run("empty left and right", func(t *testing.T) {
		parts, err := SplitFinalResponse("   ---a2ui_JSON---  \n ")
		require.NoError(t, err)
		assert.Empty(t, parts)
	})

	t.Run("no delimiter", func(t *testing.T) {
		parts, err := SplitFinalResponse("  Just text.  ")
		require.NoError(t, err)
		assert.Equal(t, []a2a.Part{a2a.NewTextPart("Just text.")}, parts)
	})

	t.Run("empty content", func(t *testing.T) {
		parts, err := SplitFinalResponse(" \n")
		require.NoError(t, err)
		assert.Empty(t, parts)
	})

	t.Run("splits at first delimiter only", func(t *testing.T) {
		parts, err := SplitFinalResponse("a---a2ui_JSON---[\"---a2ui_JSON---\"]")
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, "---a2ui_JSON---", parts[1].(a2a.DataPart).Data)
	})

	t.Run("empty array", func(t *testing.T) {
		parts, err := SplitFinalResponse("ok---a2ui_JSON---[]")
		require.NoError(t, err)
		assert.Len(t, parts, 1)
	})
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"```json\n[1]\n```":    "[1]",
		"```\n{}\n```":         "{}",
		"```[1]```":            "[1]",
		"  [1]  ":              "[1]",
		"```javascript {} ```": "{}",
		"[1]\n```":             "[1]",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestFenceRoundTrip(t *testing.T) {
	payload := `[{"beginRendering":{"surfaceId":"default","root":"root"}}]`
	plain, err := SplitFinalResponse("x" + Delimiter + payload)
	require.NoError(t, err)
	fenced, err := SplitFinalResponse("x" + Delimiter + "```json\n" + payload + "\n```")
	require.NoError(t, err)
	assert.Equal(t, plain, fenced)
}
