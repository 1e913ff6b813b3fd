package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amd2esm/pkg/config"
	"github.com/Sumatoshi-tech/amd2esm/pkg/migrate"
	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
)

// Report formats.
const (
	reportTable = "table"
	reportJSON  = "json"
	reportYAML  = "yaml"
)

const stdinArg = "-"

// Command errors.
var (
	ErrConversionFailed = errors.New("conversion failed")
	ErrUnknownReport    = errors.New("unknown report format")
	ErrStdinWithPaths   = errors.New("stdin input cannot be combined with paths")
)

// convertFlags are the flags of commands that run conversions. Each one
// overrides its config key only when set on the command line.
type convertFlags struct {
	inPlace        bool
	outDir         string
	beautify       bool
	fixImportPaths bool
	workers        int
	report         string
}

func (f *convertFlags) register(cmd *cobra.Command, withOutput bool) {
	if withOutput {
		cmd.Flags().BoolVarP(&f.inPlace, "in-place", "i", false, "overwrite input files")
		cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "write converted files under this directory")
	}

	cmd.Flags().BoolVar(&f.beautify, "beautify", false, "format converted modules")
	cmd.Flags().BoolVar(&f.fixImportPaths, "fix-import-paths", false, "append .js to relative component imports")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent conversions (0 = number of CPUs)")
	cmd.Flags().StringVar(&f.report, "report", reportTable, "report format: table, json or yaml")
}

func (f *convertFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("in-place") {
		cfg.Output.InPlace = f.inPlace
	}

	if changed("out-dir") {
		cfg.Output.Dir = f.outDir
	}

	if changed("beautify") {
		cfg.Convert.Beautify = f.beautify
	}

	if changed("fix-import-paths") {
		cfg.Convert.FixImportPaths = f.fixImportPaths
	}

	if changed("workers") {
		cfg.Files.Workers = f.workers
	}

	switch f.report {
	case reportTable, reportJSON, reportYAML:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReport, f.report)
	}

	err := config.Validate(cfg)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert AMD modules to ES modules",
		Long: `Convert JavaScript files, or every matching file under the given directories.

With --in-place the inputs are overwritten; with --out-dir converted files are
written under that directory using their paths relative to each input root.
With neither, nothing is written and only the report is printed.

Pass "-" to read one module from stdin and write the result to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, global, flags, args)
		},
	}

	flags.register(cmd, true)

	return cmd
}

func runConvert(cmd *cobra.Command, global *globalFlags, flags *convertFlags, args []string) error {
	rt, err := newEnv(global, observability.ModeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close()

	err = flags.apply(cmd, rt.cfg)
	if err != nil {
		return err
	}

	if containsStdin(args) {
		if len(args) > 1 {
			return ErrStdinWithPaths
		}

		return convertStdin(cmd, rt)
	}

	files, err := rt.collect(args)
	if err != nil {
		return err
	}

	runner, err := rt.runner()
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context(), files)
	if err != nil {
		return err
	}

	err = writeReport(cmd.OutOrStdout(), report, flags.report)
	if err != nil {
		return err
	}

	if report.HasFailures() {
		return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, report.Failed, report.Total)
	}

	return nil
}

func convertStdin(cmd *cobra.Command, rt *env) error {
	source, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	runner, err := rt.runner()
	if err != nil {
		return err
	}

	res, err := runner.ConvertSource(string(source))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	_, err = io.WriteString(cmd.OutOrStdout(), res.Code)
	if err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	return nil
}

func containsStdin(args []string) bool {
	for _, arg := range args {
		if arg == stdinArg {
			return true
		}
	}

	return false
}

func writeReport(w io.Writer, report *migrate.Report, format string) error {
	switch format {
	case reportJSON:
		return report.WriteJSON(w)
	case reportYAML:
		return report.WriteYAML(w)
	default:
		return renderReport(w, report)
	}
}
