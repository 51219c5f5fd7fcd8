package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDropsWhenFull(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ch, Event{Type: MessageDelta, Delta: "a"})
	Emit(ch, Event{Type: MessageDelta, Delta: "b"})

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, "a", got.Delta)
	assert.False(t, got.Timestamp.IsZero())
}

func TestSend(t *testing.T) {
	t.Run("delivers", func(t *testing.T) {
		ch := NewChannel()
		ok := Send(context.Background(), ch, Event{Type: RunEnd})
		assert.True(t, ok)
		assert.Equal(t, RunEnd, (<-ch).Type)
	})

	t.Run("gives up when context is done", func(t *testing.T) {
		ch := make(chan Event)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, Send(ctx, ch, Event{Type: RunError}))
	})
}
