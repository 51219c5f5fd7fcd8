package a2a

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	*Recorder
	finishes int
}

func (s *countingSink) Finish() {
	s.finishes++
	s.Recorder.Finish()
}

func newCountingSink() *countingSink {
	return &countingSink{Recorder: NewRecorder()}
}

func TestGuardedSink(t *testing.T) {
	ctx := context.Background()
	inner := newCountingSink()
	g := NewGuardedSink(inner)
	m := NewMapper("t", "c")

	require.NoError(t, g.Publish(ctx, m.Working("one")))
	g.Finish()
	g.Finish()

	assert.ErrorIs(t, g.Publish(ctx, m.Working("two")), ErrSinkFinished)
	assert.True(t, g.Finished())
	assert.Equal(t, 1, inner.finishes)
	assert.Len(t, inner.Events(), 1)
}

func TestNewGuardedSinkIsIdempotent(t *testing.T) {
	g := NewGuardedSink(NewRecorder())
	assert.Same(t, g, NewGuardedSink(g))
}

func TestGuardedSinkConcurrentFinish(t *testing.T) {
	inner := newCountingSink()
	g := NewGuardedSink(inner)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Publish(context.Background(), NewMessage(RoleAgent))
			g.Finish()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inner.finishes)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	m := NewMapper("t", "c")
	_ = r.Publish(context.Background(), m.Working("a"))
	_ = r.Publish(context.Background(), NewMessage(RoleAgent))
	assert.False(t, r.Finished())

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, TaskStateWorking, last.Status.State)

	r.Finish()
	r.Finish()
	assert.True(t, r.Finished())
	<-r.Done()
	assert.Len(t, r.Events(), 2)
}
