package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "telegram-llm-bot"

// SetupTracing exports spans over OTLP/HTTP to endpoint (host:port or a full
// URL) and installs the provider globally. The caller must Shutdown it on exit.
func SetupTracing(ctx context.Context, endpoint string, opts ...otlptracehttp.Option) (*sdktrace.TracerProvider, error) {
	target := otlptracehttp.WithEndpoint(endpoint)
	if strings.Contains(endpoint, "://") {
		target = otlptracehttp.WithEndpointURL(endpoint)
	}
	opts = append([]otlptracehttp.Option{target}, opts...)
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}
