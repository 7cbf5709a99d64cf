package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jan-server/support-chat-api"

// GetTracer returns the tracer for the support-chat-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartIngestSpan starts the span covering one message submission.
func StartIngestSpan(ctx context.Context, transport, conversationID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat.ingest",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chat.transport", transport),
			attribute.String("chat.conversation_id", conversationID),
		),
	)
}

// StartStepSpan starts a child span for one pipeline step.
func StartStepSpan(ctx context.Context, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat."+step,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID from the current context.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
