package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = prev })
	return rec
}

func TestAnalysisSpan_RecordsStagesAndError(t *testing.T) {
	rec := useRecorder(t)

	span, ctx := StartAnalysisSpan(context.Background(), "job-1", "user-1")
	Stage(ctx, "image.loaded")
	Stage(ctx, "model.replied")
	span.SetError(errors.New("no JSON object found in model response"))
	assert.NotEmpty(t, span.TraceID())
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "weapon_analysis.process", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	// RecordError adds an "exception" event after the stages.
	require.Len(t, got.Events(), 3)
	assert.Equal(t, "image.loaded", got.Events()[0].Name)
	assert.Equal(t, "model.replied", got.Events()[1].Name)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	span, _ := StartAnalysisSpan(context.Background(), "job", "user")
	span.SetError(nil)
	span.End()
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ServiceName: "test", Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(1).Description())
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased")
}
