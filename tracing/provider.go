package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StdoutProvider returns a tracer provider that writes finished spans as
// JSON to w, installs it together with the W3C trace-context propagator as
// the otel globals, and returns a Config using them plus a shutdown func
// that flushes pending spans.
func StdoutProvider(w io.Writer) (*Config, func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	prop := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(prop)
	return &Config{TracerProvider: tp, Propagators: prop}, tp.Shutdown, nil
}
