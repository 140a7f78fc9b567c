package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by this library.
const TracerName = "github.com/metalwarrior665/apify-client-go"

// StartCall opens a client span for one API call. It is a no-op unless the
// application installed a tracer provider.
func StartCall(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "apify "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// RecordAttempt adds an attempt event to span.
func RecordAttempt(span trace.Span, attempt, status int) {
	span.AddEvent("attempt", trace.WithAttributes(
		attribute.Int("attempt", attempt),
		attribute.Int("http.response.status_code", status),
	))
}

// RecordRetry adds a retry event to span.
func RecordRetry(span trace.Span, reason string, count int) {
	span.AddEvent("retry", trace.WithAttributes(
		attribute.String("reason", reason),
		attribute.Int("count", count),
	))
}

// EndCall closes span with the call outcome.
func EndCall(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
