package agent

import "errors"

var (
	// ErrMaxStepsReached indicates the agent hit the step limit.
	ErrMaxStepsReached = errors.New("agent: maximum steps reached")

	// ErrEmptyStream indicates the model stream closed without a response.
	ErrEmptyStream = errors.New("agent: stream ended without a response")
)
