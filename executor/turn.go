package executor

import (
	"context"
	"sync/atomic"

	"github.com/spetersoncode/tablebridge/a2a"
)

// turn is the in-flight state of one Execute call that Cancel can reach.
type turn struct {
	taskID    string
	contextID string
	sink      *a2a.GuardedSink
	cancel    context.CancelFunc

	// settled is set by whichever of the turn or a cancel publishes the
	// terminal events first.
	settled atomic.Bool
	// canceled is set when a cancel won the race.
	canceled atomic.Bool
}

func (t *turn) settle() bool {
	return t.settled.CompareAndSwap(false, true)
}

func (e *Executor) register(t *turn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.turns[t.taskID]; ok {
		e.logger.Warn("task already has a turn in flight", "task_id", t.taskID)
	}
	e.turns[t.taskID] = t
}

func (e *Executor) unregister(t *turn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.turns[t.taskID] == t {
		delete(e.turns, t.taskID)
	}
}

func (e *Executor) lookup(taskID string) *turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turns[taskID]
}

func (e *Executor) recordOutcome(taskID string, state a2a.TaskState) {
	e.outcomes.Set(outcomeKey(taskID), []byte(state), e.outcomeTTL)
}

// Outcome returns the terminal state recorded for taskID.
func (e *Executor) Outcome(taskID string) (a2a.TaskState, bool) {
	data, ok := e.outcomes.Get(outcomeKey(taskID))
	if !ok {
		return "", false
	}
	return a2a.TaskState(data), true
}

// InFlight reports whether taskID has a turn running.
func (e *Executor) InFlight(taskID string) bool {
	return e.lookup(taskID) != nil
}

func outcomeKey(taskID string) string {
	return "outcome:" + taskID
}
