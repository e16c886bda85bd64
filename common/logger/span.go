package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "offboard.worker"

// SpanContext pairs a started span with the context carrying it, so queue
// consumers can manage the span lifecycle without threading two values.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan opens a span as a child of whatever trace the context carries.
//
//	sc := logger.StartSpan(ctx, "worker.process_message")
//	defer sc.End()
//	ctx = sc.Context()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

// StartSpanFromTraceID opens a span linked to a remote trace carried as a
// hex trace id, e.g. through a Redis stream message. An empty or invalid
// trace id degrades to a plain root span.
func StartSpanFromTraceID(ctx context.Context, hexTraceID, name string, opts ...trace.SpanStartOption) *SpanContext {
	traceID, err := trace.TraceIDFromHex(hexTraceID)
	if err != nil {
		return StartSpan(ctx, name, opts...)
	}

	remote := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	opts = append(opts, trace.WithLinks(trace.Link{SpanContext: remote}))
	ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
	return StartSpan(ctx, name, opts...)
}

// Context returns the context carrying the span.
func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

// End completes the span. Safe to call on a nil-span SpanContext.
func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

// RecordError records err on the span; nil errors are ignored.
func (sc *SpanContext) RecordError(err error) {
	if sc.span != nil && err != nil {
		sc.span.RecordError(err)
	}
}

// Span exposes the underlying OTel span.
func (sc *SpanContext) Span() trace.Span {
	return sc.span
}
