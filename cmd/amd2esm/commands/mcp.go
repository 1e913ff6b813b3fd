package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/amd2esm/pkg/mcp"
	"github.com/Sumatoshi-tech/amd2esm/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the converter as tools that AI agents can discover
and invoke:
  - amd_convert: Convert an AMD module to an ES module
  - amd_rewrite_imports: Append .js to relative component imports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newEnv(global, observability.ModeMCP, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			red, err := observability.NewREDMetrics(rt.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  rt.providers.Logger,
				Metrics: red,
				Tracer:  rt.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	return cmd
}
