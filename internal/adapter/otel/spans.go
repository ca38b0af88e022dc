package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "agentrelay"

// StartFlowSpan starts a span for one protocol flow invocation.
func StartFlowSpan(ctx context.Context, flow, messageID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, flow,
		trace.WithAttributes(
			attribute.String("a2a.flow", flow),
			attribute.String("a2a.message_id", messageID),
		),
	)
}

// StartDelegationSpan starts a span for a delegated unit of work.
func StartDelegationSpan(ctx context.Context, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "delegation",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
		),
	)
}
