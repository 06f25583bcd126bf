package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "roborail-assistant/turn-api"

// GetTracer returns the tracer for the turn service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartTurnSpan starts a span covering one conversational turn.
func StartTurnSpan(ctx context.Context, model string, messageCount, toolCount int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "turn.process",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("turn.model", model),
			attribute.Int("turn.messages", messageCount),
			attribute.Int("turn.tools", toolCount),
		),
	)
	return ctx, span
}

// StartToolSpan starts a span covering one tool call execution.
func StartToolSpan(ctx context.Context, toolName, callID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "tool.execute."+toolName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tool.name", toolName),
			attribute.String("tool.call_id", callID),
		),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddRoundEvent marks the start of a model round within a turn span.
func AddRoundEvent(span trace.Span, round, toolCalls int) {
	span.AddEvent("turn.round",
		trace.WithAttributes(
			attribute.Int("round.number", round),
			attribute.Int("round.tool_calls", toolCalls),
		),
	)
}
