// Package telemetry starts OpenTelemetry spans for turns and tool calls.
// Spans go to the globally registered tracer provider, which is a no-op
// unless the process installs one.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/spetersoncode/tablebridge"

// StartTurnSpan starts a span covering one A2A turn.
func StartTurnSpan(ctx context.Context, taskID, contextID string, ui bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "turn",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("context.id", contextID),
			attribute.Bool("a2ui.enabled", ui),
		),
	)
}

// StartToolCallSpan starts a span for a tool call within a run.
func StartToolCallSpan(ctx context.Context, callID, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "toolcall",
		trace.WithAttributes(
			attribute.String("toolcall.id", callID),
			attribute.String("toolcall.tool", tool),
		),
	)
}

// StartRPCSpan starts a span for a JSON-RPC request.
func StartRPCSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rpc "+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("rpc.method", method)),
	)
}

// End records err, if any, and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SetOutcome tags a turn span with its terminal task state.
func SetOutcome(span trace.Span, state string) {
	span.SetAttributes(attribute.String("task.state", state))
}
