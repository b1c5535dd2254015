// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to ingest and query documents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"docquery/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docquery as an MCP (Model Context Protocol) server over stdio,
exposing document ingestion and retrieval-grounded question answering
as tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  docquery mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docquery": {
  #       "command": "docquery",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	system, cleanup, err := newSystem()
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.NewMCPServer(
		"Docquery",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, system)

	// Graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Docquery MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		if err := system.Close(); err != nil {
			log.Printf("Warning: error closing vector store: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
