// Package config provides configuration loading and validation for amd2esm.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/amd2esm/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxFileSize = errors.New("invalid files.max_file_size")
	ErrOutputConflict     = errors.New("output.dir and output.in_place are mutually exclusive")
	ErrNoExtensions       = errors.New("files.extensions must not be empty")
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. AMD2ESM_FILES_WORKERS.
const EnvPrefix = "AMD2ESM"

// Config holds all configuration for amd2esm.
type Config struct {
	Convert   ConvertConfig   `json:"convert"   mapstructure:"convert"`
	Files     FilesConfig     `json:"files"     mapstructure:"files"`
	Output    OutputConfig    `json:"output"    mapstructure:"output"`
	Logging   LoggingConfig   `json:"logging"   mapstructure:"logging"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
}

// ConvertConfig controls the rewrite itself.
type ConvertConfig struct {
	ImportSuffixes []string `json:"import_suffixes"  mapstructure:"import_suffixes"`
	Beautify       bool     `json:"beautify"         mapstructure:"beautify"`
	FixImportPaths bool     `json:"fix_import_paths" mapstructure:"fix_import_paths"`
}

// FilesConfig controls which files are converted and how many at once.
type FilesConfig struct {
	Extensions  []string `json:"extensions"    mapstructure:"extensions"`
	MaxFileSize string   `json:"max_file_size" mapstructure:"max_file_size"`
	Workers     int      `json:"workers"       mapstructure:"workers"`
	SkipVendor  bool     `json:"skip_vendor"   mapstructure:"skip_vendor"`
}

// OutputConfig controls where converted files go. With neither field set,
// files are only reported.
type OutputConfig struct {
	Dir     string `json:"dir"      mapstructure:"dir"`
	InPlace bool   `json:"in_place" mapstructure:"in_place"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `json:"level"  mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// TelemetryConfig holds tracing and metrics export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `json:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	MetricsFile  string `json:"metrics_file"  mapstructure:"metrics_file"`
}

// MaxFileSizeBytes parses Files.MaxFileSize ("2MB", "512KiB").
func (c *Config) MaxFileSizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(c.Files.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, c.Files.MaxFileSize, err)
	}

	if size == 0 || size > uint64(maxFileSizeLimit) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Files.MaxFileSize)
	}

	limited, err := safeconv.SizeToInt64(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxFileSize, err)
	}

	return limited, nil
}

// LoadConfig loads configuration from file and environment variables. An
// empty configPath searches for .amd2esm.yaml in the working directory and
// the home directory; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".amd2esm")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ImportSuffixes: append([]string(nil), DefaultImportSuffixes...),
		},
		Files: FilesConfig{
			Extensions:  append([]string(nil), DefaultExtensions...),
			MaxFileSize: DefaultMaxFileSize,
			SkipVendor:  true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// setDefaults mirrors Default so viper can report every key.
func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("convert.beautify", def.Convert.Beautify)
	viperCfg.SetDefault("convert.fix_import_paths", def.Convert.FixImportPaths)
	viperCfg.SetDefault("convert.import_suffixes", def.Convert.ImportSuffixes)

	viperCfg.SetDefault("files.extensions", def.Files.Extensions)
	viperCfg.SetDefault("files.max_file_size", def.Files.MaxFileSize)
	viperCfg.SetDefault("files.skip_vendor", def.Files.SkipVendor)
	viperCfg.SetDefault("files.workers", def.Files.Workers)

	viperCfg.SetDefault("output.dir", def.Output.Dir)
	viperCfg.SetDefault("output.in_place", def.Output.InPlace)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("telemetry.otlp_endpoint", def.Telemetry.OTLPEndpoint)
	viperCfg.SetDefault("telemetry.metrics_file", def.Telemetry.MetricsFile)
}

// Validate checks config against the embedded JSON schema and the rules the
// schema cannot express.
func Validate(config *Config) error {
	schemaErr := validateSchema(config)
	if schemaErr != nil {
		return schemaErr
	}

	if len(config.Files.Extensions) == 0 {
		return ErrNoExtensions
	}

	if config.Output.InPlace && config.Output.Dir != "" {
		return ErrOutputConflict
	}

	_, sizeErr := config.MaxFileSizeBytes()

	return sizeErr
}
