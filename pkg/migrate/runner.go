// Package migrate applies the AMD to ES module conversion to files on disk.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/amd2esm/pkg/amd"
	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
	"github.com/Sumatoshi-tech/amd2esm/pkg/textutil"
)

// Reasons for skipping a file.
var (
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrBinaryFile   = errors.New("file looks binary")
)

const outputDirPerm = 0o750

// Status is the outcome of one file.
type Status string

// File statuses.
const (
	StatusConverted Status = observability.OutcomeConverted
	StatusUnchanged Status = observability.OutcomeUnchanged
	StatusFailed    Status = observability.OutcomeFailed
	StatusSkipped   Status = observability.OutcomeSkipped
)

// Options configures a Runner.
type Options struct {
	// Beautify formats converted modules.
	Beautify bool
	// FixImportPaths appends ".js" to relative imports whose binding ends
	// with one of ImportSuffixes.
	FixImportPaths bool
	// ImportSuffixes overrides amd.DefaultImportSuffixes when non-empty.
	ImportSuffixes []string
	// Workers bounds concurrent conversions. Zero means GOMAXPROCS.
	Workers int
	// MaxFileSize skips larger files. Zero disables the limit.
	MaxFileSize int64
	// OutDir receives converted files under their relative paths.
	OutDir string
	// InPlace overwrites the input files. With neither OutDir nor InPlace
	// the run only reports.
	InPlace bool

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.ConversionMetrics
	// Formatter overrides the beautifier; nil uses esbuild.
	Formatter amd.Formatter
}

// Runner converts batches of files.
type Runner struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewRunner creates a Runner, filling in defaults.
func NewRunner(opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("amd2esm/migrate")
	}

	return &Runner{opts: opts, logger: logger, tracer: tracer}
}

// ConvertSource converts one module held in memory, then fixes import paths
// when enabled.
func (r *Runner) ConvertSource(source string) (*amd.Result, error) {
	res, err := amd.ConvertResult(source, amd.Options{
		Beautify:  r.opts.Beautify,
		Formatter: r.opts.Formatter,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}

	if r.opts.FixImportPaths {
		fixed, fixErr := amd.RewriteImportPaths(res.Code, amd.ImportPathOptions{Suffixes: r.opts.ImportSuffixes})
		if fixErr != nil {
			return nil, fmt.Errorf("fix import paths: %w", fixErr)
		}

		res.Code = fixed
	}

	res.Changed = res.Code != source

	return res, nil
}

// Run converts files with bounded concurrency. Per-file failures are
// recorded in the report; the returned error is reserved for cancellation.
func (r *Runner) Run(ctx context.Context, files []Source) (*Report, error) {
	results := make([]FileResult, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, src := range files {
		g.Go(func() error {
			if ctxErr := gCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			results[i] = r.processFile(gCtx, src)

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("convert files: %w", err)
	}

	return newReport(results), nil
}

func (r *Runner) processFile(ctx context.Context, src Source) FileResult {
	ctx, span := r.tracer.Start(ctx, "amd2esm.file",
		trace.WithAttributes(attribute.String("file.path", src.Rel)))
	defer span.End()

	started := time.Now()
	result := r.convertFile(src)
	result.Duration = time.Since(started)

	span.SetAttributes(attribute.String("outcome", string(result.Status)))

	switch result.Status {
	case StatusFailed:
		span.SetStatus(codes.Error, result.Error)
		r.logger.ErrorContext(ctx, "conversion failed",
			slog.String("file", src.Rel), slog.String("error", result.Error))
	case StatusSkipped:
		r.logger.WarnContext(ctx, "file skipped",
			slog.String("file", src.Rel), slog.String("reason", result.Error))
	case StatusConverted, StatusUnchanged:
		r.logger.InfoContext(ctx, "file processed",
			slog.String("file", src.Rel), slog.String("status", string(result.Status)))
	}

	r.opts.Metrics.RecordFile(ctx, observability.FileStats{
		Outcome:    string(result.Status),
		Bytes:      result.Bytes,
		Imports:    result.Imports,
		Components: result.Components,
		Duration:   result.Duration,
	})

	return result
}

func (r *Runner) convertFile(src Source) FileResult {
	result := FileResult{Path: src.Path, Rel: src.Rel}

	info, err := os.Stat(src.Path)
	if err != nil {
		return result.fail(fmt.Errorf("stat: %w", err))
	}

	result.Bytes = int(info.Size())

	if r.opts.MaxFileSize > 0 && info.Size() > r.opts.MaxFileSize {
		result.Status = StatusSkipped
		result.Error = fmt.Sprintf("%v: %d > %d bytes", ErrFileTooLarge, info.Size(), r.opts.MaxFileSize)

		return result
	}

	content, err := os.ReadFile(src.Path)
	if err != nil {
		return result.fail(fmt.Errorf("read: %w", err))
	}

	if textutil.IsBinary(content) {
		result.Status = StatusSkipped
		result.Error = ErrBinaryFile.Error()

		return result
	}

	result.Language = Language(src.Path, content)
	result.Lines = textutil.CountLines(content)

	bom, text := textutil.SplitBOM(content)

	res, err := r.ConvertSource(string(text))
	if err != nil {
		return result.fail(err)
	}

	res.Code = string(bom) + res.Code

	result.Shape = res.Shape
	result.Imports = len(res.Imports)
	result.Components = len(res.Components)
	result.Status = StatusUnchanged

	if res.Changed {
		result.Status = StatusConverted
	}

	writeErr := r.write(src, info.Mode().Perm(), res)
	if writeErr != nil {
		return result.fail(writeErr)
	}

	result.Output = r.outputPath(src)

	return result
}

func (r *Runner) write(src Source, perm os.FileMode, res *amd.Result) error {
	switch {
	case r.opts.OutDir != "":
		dest := r.outputPath(src)

		err := os.MkdirAll(filepath.Dir(dest), outputDirPerm)
		if err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		err = os.WriteFile(dest, []byte(res.Code), perm)
		if err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	case r.opts.InPlace && res.Changed:
		err := os.WriteFile(src.Path, []byte(res.Code), perm)
		if err != nil {
			return fmt.Errorf("write %s: %w", src.Path, err)
		}
	}

	return nil
}

func (r *Runner) outputPath(src Source) string {
	switch {
	case r.opts.OutDir != "":
		return filepath.Join(r.opts.OutDir, src.Rel)
	case r.opts.InPlace:
		return src.Path
	default:
		return ""
	}
}
