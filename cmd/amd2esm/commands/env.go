package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/amd2esm/pkg/config"
	"github.com/Sumatoshi-tech/amd2esm/pkg/migrate"
	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
	"github.com/Sumatoshi-tech/amd2esm/pkg/version"
)

const logFormatJSON = "json"

// env is the per-invocation runtime: loaded config plus telemetry.
type env struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.ConversionMetrics
}

func newEnv(flags *globalFlags, mode observability.AppMode, logs io.Writer) (*env, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg, err := observabilityConfig(cfg, flags.verbose, mode, logs)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewConversionMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &env{cfg: cfg, providers: providers, metrics: metrics}, nil
}

func observabilityConfig(cfg *config.Config, verbose bool, mode observability.AppMode, logs io.Writer) (observability.Config, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	if verbose {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == logFormatJSON || mode == observability.ModeMCP
	obsCfg.LogWriter = logs
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"

	return obsCfg, nil
}

func (e *env) close() {
	shutdownErr := e.providers.Shutdown(context.Background())
	if shutdownErr != nil {
		e.providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}

// runner builds a migrate.Runner from the config. Output settings are taken
// from cfg, so callers clear them for dry runs.
func (e *env) runner() (*migrate.Runner, error) {
	maxSize, err := e.cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	return migrate.NewRunner(migrate.Options{
		Beautify:       e.cfg.Convert.Beautify,
		FixImportPaths: e.cfg.Convert.FixImportPaths,
		ImportSuffixes: e.cfg.Convert.ImportSuffixes,
		Workers:        e.cfg.Files.Workers,
		MaxFileSize:    maxSize,
		OutDir:         e.cfg.Output.Dir,
		InPlace:        e.cfg.Output.InPlace,
		Logger:         e.providers.Logger,
		Tracer:         e.providers.Tracer,
		Metrics:        e.metrics,
	}), nil
}

func (e *env) collect(paths []string) ([]migrate.Source, error) {
	files, err := migrate.Collect(paths, migrate.CollectOptions{
		Extensions: e.cfg.Files.Extensions,
		SkipVendor: e.cfg.Files.SkipVendor,
	})
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	return files, nil
}
