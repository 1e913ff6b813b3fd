package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
)

// ErrFilesWouldChange is returned by check when at least one file would be
// rewritten. main exits with ExitWouldChange for it.
var ErrFilesWouldChange = errors.New("files would change")

// NewCheckCommand creates the check command.
func NewCheckCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "List files that still contain AMD module definitions",
		Long: `Run the conversion without writing anything and list the files it would
rewrite. Exits with status 2 when any file would change and 1 when any file
cannot be converted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, global, flags, args)
		},
	}

	flags.register(cmd, false)

	return cmd
}

func runCheck(cmd *cobra.Command, global *globalFlags, flags *convertFlags, args []string) error {
	rt, err := newEnv(global, observability.ModeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close()

	err = flags.apply(cmd, rt.cfg)
	if err != nil {
		return err
	}

	rt.cfg.Output.Dir = ""
	rt.cfg.Output.InPlace = false

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

	out := cmd.OutOrStdout()

	if flags.report != reportTable {
		err = writeReport(out, report, flags.report)
		if err != nil {
			return err
		}
	} else {
		for _, f := range report.Changed() {
			color.New(color.FgYellow).Fprintf(out, "would convert %s\n", sanitizeForTerminal(f.Rel))
		}

		for _, f := range report.Files {
			if f.Error != "" {
				color.New(color.FgRed).Fprintf(out, "%s %s: %s\n", f.Status, sanitizeForTerminal(f.Rel), sanitizeForTerminal(f.Error))
			}
		}
	}

	if report.HasFailures() {
		return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, report.Failed, report.Total)
	}

	if changed := len(report.Changed()); changed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrFilesWouldChange, changed, report.Total)
	}

	color.New(color.FgGreen).Fprintf(out, "%d files checked, nothing to convert\n", report.Total)

	return nil
}
