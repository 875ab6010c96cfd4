package main

import (
	"github.com/spf13/cobra"

	"github.com/Kevdacosta07/CarbWeb/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run a Model Context Protocol server on stdio.",
		Long: `Expose the analyze_page tool to MCP clients over stdin/stdout.
Logs go to stderr so they never corrupt the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			an, err := buildAnalyzer(a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			return mcp.Serve(cmd.Context(), an, version, a.logger)
		},
	}
}
