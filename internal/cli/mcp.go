package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/broilr/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	// SSEAddr serves over SSE instead of stdio when set.
	SSEAddr string
	BaseURL string
}

// ServeMCP exposes a conversation for the stored user as an MCP server.
func ServeMCP(ctx context.Context, rt *Runtime, opts MCPOptions) error {
	username, err := rt.Identity.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: run 'broilr login' first", err)
	}
	conv, err := rt.NewConversation(ctx, username)
	if err != nil {
		return err
	}

	server := mcp.NewServer(conv,
		mcp.WithLogger(rt.Logger),
		mcp.WithMaxInputSize(rt.Config.Input.MaxSize),
	)
	if opts.SSEAddr == "" {
		return server.ServeStdio()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + opts.SSEAddr
	}
	return handleExecutionError(server.ServeSSE(ctx, opts.SSEAddr, baseURL))
}
