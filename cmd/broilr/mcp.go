package main

import (
	"github.com/aretw0/broilr/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose a conversation as a Model Context Protocol server",
	Long: `Starts an MCP server over stdio (default) or SSE so that agents can
drive a cooking conversation with the send_message tool.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		sseAddr, _ := cmd.Flags().GetString("sse-addr")
		baseURL, _ := cmd.Flags().GetString("base-url")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, rt, cli.MCPOptions{SSEAddr: sseAddr, BaseURL: baseURL})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse-addr", "", "Serve over SSE on this address instead of stdio")
	mcpCmd.Flags().String("base-url", "", "Public base URL for SSE clients")
}
