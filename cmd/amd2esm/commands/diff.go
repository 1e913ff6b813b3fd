package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amd2esm/pkg/migrate"
	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(global *globalFlags) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Show the conversion of a file as a line diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.beautify, "beautify", false, "format converted modules")
	cmd.Flags().BoolVar(&flags.fixImportPaths, "fix-import-paths", false, "append .js to relative component imports")

	return cmd
}

func runDiff(cmd *cobra.Command, global *globalFlags, flags *convertFlags, path string) error {
	rt, err := newEnv(global, observability.ModeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close()

	if cmd.Flags().Changed("beautify") {
		rt.cfg.Convert.Beautify = flags.beautify
	}

	if cmd.Flags().Changed("fix-import-paths") {
		rt.cfg.Convert.FixImportPaths = flags.fixImportPaths
	}

	content, resolved, err := safeReadFile(path)
	if err != nil {
		return err
	}

	runner, err := rt.runner()
	if err != nil {
		return err
	}

	res, err := runner.ConvertSource(string(content))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConversionFailed, resolved, err)
	}

	out := cmd.OutOrStdout()
	name := sanitizeForTerminal(path)

	if !res.Changed {
		_, err = fmt.Fprintf(out, "%s: no changes\n", name)
		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}

		return nil
	}

	return printDiff(out, name, migrate.LineDiff(string(content), res.Code))
}

func printDiff(w io.Writer, name string, diff []migrate.DiffLine) error {
	bold := color.New(color.Bold)
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	_, err := bold.Fprintf(w, "--- %s\n+++ %s (converted)\n", name, name)
	if err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	lines := migrate.UnifiedLines(diff)

	for i, line := range lines {
		printer := fmt.Fprintln

		switch diff[i].Op {
		case migrate.LineInsert:
			printer = added.Fprintln
		case migrate.LineDelete:
			printer = removed.Fprintln
		case migrate.LineEqual:
		}

		_, err = printer(w, line)
		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	return nil
}
