package main

import (
	"github.com/spetersoncode/warden/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workflow and tools over MCP stdio",
	Long: `Starts an MCP server on stdin/stdout exposing run_triage, describe_workflow, get_run and the built-in tools.

Example client configuration:

    {
        "mcpServers": {
            "warden": {"command": "warden", "args": ["mcp"]}
        }
    }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcp.ServeStdio(mcp.NewServer(a.tools,
			mcp.WithName("warden"),
			mcp.WithVersion(version),
			mcp.WithRunner(a.runner),
			mcp.WithHistory(a.runs),
		))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
