// Package telemetry wires OpenTelemetry spans around plugin and worker
// execution. It configures only the tracer API, not an SDK/exporter
// pipeline: a process that wants spans shipped somewhere installs its own
// TracerProvider (e.g. via otel.SetTracerProvider) before starting spans;
// absent that, the global provider's no-op implementation makes every call
// here a cheap, safe default.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/pydidas/pydidas-go"

var tracer = otel.Tracer(instrumentationName)

// StartSpan starts a span named name under ctx's existing trace, if any.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndWithError ends span, marking it as failed and recording err when err
// is non-nil, or Ok otherwise. Intended to be deferred right after
// StartSpan using a named error return:
//
//	ctx, span := telemetry.StartSpan(ctx, "node.execute")
//	defer func() { telemetry.EndWithError(span, err) }()
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
