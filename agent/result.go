package agent

import ai "github.com/spetersoncode/tablebridge"

// TerminationReason describes why a run stopped.
type TerminationReason string

const (
	TerminationComplete  TerminationReason = "complete"
	TerminationMaxSteps  TerminationReason = "max_steps"
	TerminationTimeout   TerminationReason = "timeout"
	TerminationCancelled TerminationReason = "cancelled"
	TerminationError     TerminationReason = "error"
)

// Result is the outcome of a blocking Run.
type Result struct {
	// Response is the final model response.
	Response *ai.Response
	// Messages is the conversation produced by the run, excluding the input.
	Messages []ai.Message
	// Steps is the number of model calls made.
	Steps       int
	Termination TerminationReason
	TotalUsage  ai.Usage
	Error       error
}

// Content returns the final response text.
func (r *Result) Content() string {
	if r == nil || r.Response == nil {
		return ""
	}
	return r.Response.Content
}
