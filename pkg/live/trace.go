package live

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "loom"

// Tracer wraps the global OpenTelemetry tracer provider for event
// dispatch spans. Configure the provider in main() with
// otel.SetTracerProvider before starting the server; with no provider
// installed the spans are no-ops.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// StartEvent opens a span for one dispatched client event.
func (t *Tracer) StartEvent(ctx context.Context, event string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "loom.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("loom.event", event)),
	)
}
