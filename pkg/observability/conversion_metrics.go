package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal      = "amd2esm.files.total"
	metricBytesTotal      = "amd2esm.bytes.total"
	metricImportsTotal    = "amd2esm.imports.total"
	metricFileDuration    = "amd2esm.file.duration.seconds"
	metricComponentsTotal = "amd2esm.components.total"

	attrOutcome = "outcome"
)

// File outcomes.
const (
	OutcomeConverted = "converted"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// ConversionMetrics holds OTel instruments for per-file conversion results.
type ConversionMetrics struct {
	filesTotal   metric.Int64Counter
	bytesTotal   metric.Int64Counter
	importsTotal metric.Int64Counter
	components   metric.Int64Counter
	fileDuration metric.Float64Histogram
}

// FileStats describes one processed file.
type FileStats struct {
	Outcome    string
	Bytes      int
	Imports    int
	Components int
	Duration   time.Duration
}

// NewConversionMetrics creates conversion metric instruments from the given meter.
func NewConversionMetrics(mt metric.Meter) (*ConversionMetrics, error) {
	b := newMetricBuilder(mt)

	cm := &ConversionMetrics{
		filesTotal:   b.counter(metricFilesTotal, "Files processed by outcome", "{file}"),
		bytesTotal:   b.counter(metricBytesTotal, "Source bytes read", "By"),
		importsTotal: b.counter(metricImportsTotal, "Import statements emitted", "{import}"),
		components:   b.counter(metricComponentsTotal, "Component bindings synthesized from module paths", "{component}"),
		fileDuration: b.histogram(metricFileDuration, "Per-file conversion duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return cm, nil
}

// RecordFile records the result of one file. Nil receivers are ignored.
func (cm *ConversionMetrics) RecordFile(ctx context.Context, stats FileStats) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrOutcome, stats.Outcome))

	cm.filesTotal.Add(ctx, 1, attrs)
	cm.bytesTotal.Add(ctx, int64(stats.Bytes))
	cm.fileDuration.Record(ctx, stats.Duration.Seconds(), attrs)

	if stats.Imports > 0 {
		cm.importsTotal.Add(ctx, int64(stats.Imports))
	}

	if stats.Components > 0 {
		cm.components.Add(ctx, int64(stats.Components))
	}
}
