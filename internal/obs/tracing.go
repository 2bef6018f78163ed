package obs

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/icu-sec/icu")

// InitTracing wires a stdout span exporter into the global OpenTelemetry
// trace provider. Intended for local debugging and the cmd/icu demo
// entrypoint; a production deployment would swap in an OTLP exporter
// without touching any call site here.
func InitTracing(ctx context.Context) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := trace.NewTracerProvider(trace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// StartSpan starts a child span named name under the pipeline tracer.
// Safe to call even when tracing was never initialized: the default
// no-op tracer provider makes every span a cheap no-op.
func StartSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	return tracer.Start(ctx, name)
}
