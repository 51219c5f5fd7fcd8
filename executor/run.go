package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
)

// run drives the stream of one turn from idle to a terminal state.
type run struct {
	exec   *Executor
	turn   *turn
	mapper *a2a.Mapper
	logger *slog.Logger
	action *a2ui.UserAction
	ui     bool
	sent   int
}

func (r *run) drive(ctx context.Context, items <-chan ai.StreamItem) (a2a.TaskState, error) {
	var timeout <-chan time.Time
	if d := r.exec.streamTimeout; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		var item ai.StreamItem
		var ok bool
		select {
		case item, ok = <-items:
		case <-timeout:
			return r.fail(ctx, ErrStreamTimeout)
		case <-ctx.Done():
			return r.fail(ctx, ctx.Err())
		}

		if r.turn.canceled.Load() {
			return a2a.TaskStateCanceled, nil
		}
		switch {
		case !ok:
			return r.fail(ctx, ErrStreamClosed)
		case item.Err != nil:
			return r.fail(ctx, item.Err)
		case item.IsComplete:
			return r.complete(ctx, item.Content)
		}

		if err := r.publish(ctx, r.mapper.Working(item.Updates)); err != nil {
			if r.turn.canceled.Load() {
				return a2a.TaskStateCanceled, nil
			}
			return r.fail(ctx, err)
		}
	}
}

func (r *run) complete(ctx context.Context, content string) (a2a.TaskState, error) {
	if !r.turn.settle() {
		return a2a.TaskStateCanceled, nil
	}
	defer r.turn.sink.Finish()
	r.turn.cancel()

	parts, err := a2ui.SplitFinalResponse(content)
	if err != nil {
		r.logger.Warn("ui payload did not parse, sending as text", "error", err)
		r.exec.metrics.UIParseFailed()
	}
	for i, p := range parts {
		r.logger.Debug("final part", "index", i, "kind", p.GetKind())
	}

	state := r.exec.policy(r.action, r.ui)
	msg := r.mapper.AgentMessage(parts...)
	if err := r.publishFinal(ctx, msg, state); err != nil {
		return r.failSettled(ctx, err)
	}
	r.exec.recordOutcome(r.turn.taskID, state)
	return state, nil
}

func (r *run) fail(ctx context.Context, cause error) (a2a.TaskState, error) {
	if !r.turn.settle() {
		return a2a.TaskStateCanceled, nil
	}
	defer r.turn.sink.Finish()
	r.turn.cancel()
	return r.failSettled(ctx, cause)
}

// failSettled publishes the error message and the failed status. The
// publishes ignore cancellation of ctx so the caller still learns the
// outcome.
func (r *run) failSettled(ctx context.Context, cause error) (a2a.TaskState, error) {
	r.logger.Error("turn failed", "error", cause)
	msg := r.mapper.AgentMessage(a2a.NewTextPart(fmt.Sprintf("I'm sorry, I encountered an error: %v", cause)))
	if err := r.publishFinal(context.WithoutCancel(ctx), msg, a2a.TaskStateFailed); err != nil {
		r.logger.Warn("failed to publish failure", "error", err)
	}
	r.exec.recordOutcome(r.turn.taskID, a2a.TaskStateFailed)
	return a2a.TaskStateFailed, cause
}

func (r *run) publishFinal(ctx context.Context, msg a2a.Message, state a2a.TaskState) error {
	if err := r.publish(ctx, msg); err != nil {
		return err
	}
	return r.publish(ctx, r.mapper.Final(state, &msg))
}

func (r *run) publish(ctx context.Context, e a2a.Event) error {
	if err := r.turn.sink.Publish(ctx, e); err != nil {
		return err
	}
	r.sent++
	r.exec.metrics.EventPublished(e.EventKind())
	return nil
}
