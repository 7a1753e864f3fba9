package otelx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLING_RATIO", "2")
	cfg := ConfigFromEnv("clinic-service", "development")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRatio)
	assert.Equal(t, "clinic-service", cfg.ServiceName)
}

func TestTraceContextRoundTrip(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "book")
	defer span.End()

	traceparent, _ := TraceContextStrings(ctx)
	require.NotEmpty(t, traceparent)

	restored := ContextWithTraceContext(context.Background(), traceparent, "")
	again, _ := TraceContextStrings(restored)
	assert.Equal(t, traceparent, again)

	assert.Equal(t, context.Background(), ContextWithTraceContext(context.Background(), "", ""))
}
