package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/daylog/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve daylog to AI assistants over the Model Context Protocol",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server exposing the daily flows as tools and the daily
state and trend windows as resources.

Without --addr the server speaks JSON-RPC over stdio, which is what
desktop assistants launch. With --addr it serves the streamable HTTP
transport; server.token, when set, is then required as a bearer token.
--read-only offers the state tool and the resources only.

Examples:
  daylog mcp serve
  daylog mcp serve --addr 127.0.0.1:8788 --read-only

Assistant configuration:
  {"mcpServers": {"daylog": {"command": "daylog", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpAddr     string
	mcpReadOnly bool
)

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve HTTP on this address instead of stdio")
	mcpServeCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "offer only the tools that do not write")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if flowService == nil || stateService == nil {
		return errors.New("mcp services not configured")
	}

	opts := mcp.Options{ReadOnly: mcpReadOnly}
	if serveConfig != nil {
		opts.Token = serveConfig.Token
	}
	server, err := mcp.NewServer(&mcp.Ports{
		Flows:  flowService,
		State:  stateService,
		Ingest: ingestService,
	}, opts)
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	return server.ListenHTTP(cmd.Context(), mcpAddr)
}
