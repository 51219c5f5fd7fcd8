package tool

import (
	"context"

	ai "github.com/spetersoncode/tablebridge"
)

// Handler executes a tool call and returns the content handed back to the
// model.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler receives arguments already decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
