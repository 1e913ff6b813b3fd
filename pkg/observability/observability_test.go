package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
)

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "test-svc", observability.ModeCLI))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.WithGroup("file").InfoContext(ctx, "converted", "path", "a.js")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "test-svc", record["service"])
	assert.Equal(t, "cli", record["mode"])
	assert.Equal(t, map[string]any{"path": "a.js"}, record["file"])
}

func TestTracingHandler_TraceContextStaysTopLevelUnderNestedScopes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "amd2esm", observability.ModeCLI))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.With("run", 1).WithGroup("batch").With("size", 2).WithGroup("file").InfoContext(ctx, "skipped", "path", "b.js")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.InDelta(t, 1, record["run"], 0)
	assert.Equal(t, map[string]any{
		"size": float64(2),
		"file": map[string]any{"path": "b.js"},
	}, record["batch"])
}

func TestTracingHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "amd2esm", observability.ModeMCP))

	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.NotContains(t, record, "trace_id")
	assert.Equal(t, "mcp", record["mode"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := observability.ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := observability.ParseLevel("loud")
	require.ErrorIs(t, err, observability.ErrUnknownLevel)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, observability.ParseOTLPHeaders(" a=1 , b = 2"))
}

func TestInit_NoExportIsNoop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &buf
	cfg.LogJSON = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	providers.Logger.Info("ready")
	assert.Contains(t, buf.String(), `"service":"amd2esm"`)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_MetricsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "amd2esm.prom")

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &bytes.Buffer{}
	cfg.MetricsFile = path

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	cm, err := observability.NewConversionMetrics(providers.Meter)
	require.NoError(t, err)

	cm.RecordFile(context.Background(), observability.FileStats{
		Outcome:  observability.OutcomeConverted,
		Bytes:    120,
		Imports:  2,
		Duration: 3 * time.Millisecond,
	})

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "amd2esm_files_total")
	assert.Contains(t, string(data), `outcome="converted"`)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "demo_total", Help: "demo"})
	registry.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "demo.prom")
	require.NoError(t, observability.WriteTextfile(path, registry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "demo_total 3")

	err = observability.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), registry)
	require.Error(t, err)
}

func newReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()

	reader := sdkmetric.NewManualReader()

	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics(t *testing.T) {
	t.Parallel()

	reader, mp := newReader(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	done := red.TrackInflight(ctx, "amd_convert")
	red.RecordRequest(ctx, "amd_convert", observability.StatusOK, 10*time.Millisecond)
	red.RecordRequest(ctx, "amd_convert", observability.StatusError, time.Millisecond)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["amd2esm.requests.total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["amd2esm.errors.total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["amd2esm.inflight.requests"]))

	done()

	metrics = collect(t, reader)
	assert.Equal(t, int64(0), sumOf(t, metrics["amd2esm.inflight.requests"]))
}

func TestConversionMetrics(t *testing.T) {
	t.Parallel()

	reader, mp := newReader(t)

	cm, err := observability.NewConversionMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordFile(ctx, observability.FileStats{Outcome: observability.OutcomeConverted, Bytes: 100, Imports: 3, Components: 1})
	cm.RecordFile(ctx, observability.FileStats{Outcome: observability.OutcomeUnchanged, Bytes: 50})

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["amd2esm.files.total"]))
	assert.Equal(t, int64(150), sumOf(t, metrics["amd2esm.bytes.total"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["amd2esm.imports.total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["amd2esm.components.total"]))

	var nilMetrics *observability.ConversionMetrics
	nilMetrics.RecordFile(ctx, observability.FileStats{})
}
