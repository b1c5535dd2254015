// ABOUTME: Main entry point for the docquery MCP server with stdio transport
// ABOUTME: Initializes config, vector store, model client and all MCP tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"docquery/internal/charm"
	"docquery/internal/config"
	"docquery/internal/index"
	"docquery/internal/llm"
	"docquery/internal/mcp"
	"docquery/internal/rag"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("OPENAI_BASE_URL") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embeddings and generation will not work")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := llm.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize model client: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer store.Close()

	system := rag.NewSystem(cfg, client, client, store)

	server := mcpserver.NewMCPServer(
		"Docquery",
		"0.1.0",
	)
	mcp.RegisterTools(server, system)

	log.Println("Docquery MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func openStore(cfg *config.Config) (index.Store, error) {
	if cfg.StoreBackend == config.BackendCharm {
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			return nil, err
		}
		return index.NewCharmStore(cfg.VectorDim, client)
	}
	return index.NewFlat(cfg.VectorDim, cfg.IndexPath)
}
