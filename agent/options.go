package agent

import (
	"time"

	ai "github.com/spetersoncode/tablebridge"
)

// Options contains configuration for agent execution.
type Options struct {
	// MaxSteps limits the number of model calls. Default is 10.
	MaxSteps int

	// Timeout bounds the whole run. Zero defers to the context.
	Timeout time.Duration

	// HandlerTimeout bounds each tool handler. Default is 30 seconds.
	HandlerTimeout time.Duration

	// ParallelToolCalls runs the calls of one step concurrently. Default is true.
	ParallelToolCalls bool

	// ChatOptions are passed to every chat call.
	ChatOptions []ai.Option
}

// Option is a functional option for configuring agent execution.
type Option func(*Options)

// WithMaxSteps sets the maximum number of model calls.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithTimeout sets a deadline for the entire run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHandlerTimeout sets the timeout for each tool handler.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithChatOptions passes options through to the chat client.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// ApplyOptions applies opts over the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxSteps:          10,
		HandlerTimeout:    30 * time.Second,
		ParallelToolCalls: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
