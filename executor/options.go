package executor

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/internal/metrics"
)

// CompletionPolicy decides the terminal state of a turn that produced its
// final output. action is nil for plain-text turns.
type CompletionPolicy func(action *a2ui.UserAction, ui bool) a2a.TaskState

// DefaultCompletionPolicy completes the task once a booking is submitted
// and otherwise waits for more input.
func DefaultCompletionPolicy(action *a2ui.UserAction, _ bool) a2a.TaskState {
	if action != nil && action.ActionName == a2ui.ActionSubmitBooking {
		return a2a.TaskStateCompleted
	}
	return a2a.TaskStateInputRequired
}

// OutcomeStore records the terminal state of finished turns.
// *cache.Cache satisfies it.
type OutcomeStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) bool
}

// DefaultOutcomeTTL is how long a finished turn's outcome is remembered.
const DefaultOutcomeTTL = time.Hour

// Option configures an Executor.
type Option func(*Executor)

// WithStreamTimeout bounds how long a turn waits for the agent to finish.
// Zero waits indefinitely.
func WithStreamTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.streamTimeout = d
	}
}

// WithCompletionPolicy replaces DefaultCompletionPolicy.
func WithCompletionPolicy(p CompletionPolicy) Option {
	return func(e *Executor) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics records turn metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithOutcomeStore records outcomes in s for ttl instead of a private cache.
func WithOutcomeStore(s OutcomeStore, ttl time.Duration) Option {
	return func(e *Executor) {
		e.outcomes = s
		if ttl > 0 {
			e.outcomeTTL = ttl
		}
	}
}
