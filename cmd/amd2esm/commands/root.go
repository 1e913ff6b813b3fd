// Package commands implements the amd2esm CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// ExitWouldChange is the exit status of check when files would change.
const ExitWouldChange = 2

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the amd2esm command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "amd2esm",
		Short: "Convert AMD modules to ES modules",
		Long: `amd2esm rewrites AMD (RequireJS style) JavaScript modules into ES module
syntax: define/require dependency lists become import declarations and the
factory body becomes the module body.

Commands:
  convert   Convert files, directories or stdin
  check     Report files that would change
  diff      Show the conversion of one file as a line diff
  mcp       Serve the conversion over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is .amd2esm.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(NewConvertCommand(flags))
	rootCmd.AddCommand(NewCheckCommand(flags))
	rootCmd.AddCommand(NewDiffCommand(flags))
	rootCmd.AddCommand(NewMCPCommand(flags))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
