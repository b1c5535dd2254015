// ABOUTME: Shared construction of the orchestrator from environment config
// ABOUTME: Selects the vector store backend and wires the model client
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"docquery/internal/charm"
	"docquery/internal/config"
	"docquery/internal/index"
	"docquery/internal/llm"
	"docquery/internal/rag"
)

// newSystem builds the orchestrator from environment configuration. The
// returned cleanup releases backend resources and must be called when the
// command finishes.
func newSystem() (*rag.System, func(), error) {
	// Load .env for API keys and local overrides
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	client, err := llm.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing model client: %w", err)
	}

	store, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	return rag.NewSystem(cfg, client, client, store), cleanup, nil
}

// newStore opens the vector store backend selected by configuration.
func newStore(cfg *config.Config) (index.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendCharm:
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to Charm: %w", err)
		}
		store, err := index.NewCharmStore(cfg.VectorDim, client)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("opening Charm store: %w", err)
		}
		return store, func() {
			if err := client.Close(); err != nil {
				log.Printf("Warning: error closing Charm client: %v", err)
			}
		}, nil

	default:
		store, err := index.NewFlat(cfg.VectorDim, cfg.IndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening vector index: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
}
