package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/normativa/internal/adapters/driving/mcp"
	"github.com/custodia-labs/normativa/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query the
regulations.

Tools:
  retrieve  ranked chunks and a citation-ready context block for a query
  ask       a grounded answer with its sources

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  normativa mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  normativa mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "normativa": {
        "command": "/path/to/normativa",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := cmd.Context()
	if err := wireServices(ctx); err != nil {
		return err
	}
	if retriever == nil || askService == nil {
		return errors.New("query services not configured")
	}
	if err := loadIndex(ctx); err != nil {
		logger.Warn("Serving without an index: %v", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retriever: retriever,
		Ask:       askService,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
