// ABOUTME: Centralized configuration for the docquery RAG system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Chunking strategy names accepted by DOCQUERY_CHUNK_STRATEGY.
const (
	StrategyParagraph = "paragraph"
	StrategySentence  = "sentence"
)

// Store backend names accepted by DOCQUERY_STORE_BACKEND.
const (
	BackendFile  = "file"
	BackendCharm = "charm"
)

// Config holds all configuration for the docquery system
type Config struct {
	// Document settings
	DocumentsDir   string
	FileExtensions []string

	// Chunking settings
	ChunkSize     int
	ChunkOverlap  int
	ChunkStrategy string

	// Vector store settings
	IndexPath    string
	VectorDim    int
	TopK         int
	StoreBackend string

	// Charm settings (charm backend only)
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Model settings
	OpenAIKey      string
	OpenAIBaseURL  string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DocumentsDir:   getEnv("DOCQUERY_DOCUMENTS_DIR", "data/documents"),
		FileExtensions: getEnvList("DOCQUERY_FILE_EXTENSIONS", []string{".txt", ".md", ".pdf"}),
		ChunkSize:      getEnvInt("DOCQUERY_CHUNK_SIZE", 1000),
		ChunkOverlap:   getEnvInt("DOCQUERY_CHUNK_OVERLAP", 200),
		ChunkStrategy:  getEnv("DOCQUERY_CHUNK_STRATEGY", StrategyParagraph),
		IndexPath:      getEnv("DOCQUERY_INDEX_PATH", "data/vector_store.idx"),
		VectorDim:      getEnvInt("DOCQUERY_VECTOR_DIM", 768),
		TopK:           getEnvInt("DOCQUERY_TOP_K", 3),
		StoreBackend:   getEnv("DOCQUERY_STORE_BACKEND", BackendFile),
		CharmHost:      getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:    getEnv("CHARM_DB", "docquery"),
		AutoSync:       getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		EmbeddingModel: getEnv("DOCQUERY_EMBEDDING_MODEL", "nomic-embed-text"),
		ChatModel:      getEnv("DOCQUERY_CHAT_MODEL", "llama3"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("DOCQUERY_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("DOCQUERY_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.ChunkStrategy != StrategyParagraph && c.ChunkStrategy != StrategySentence {
		return fmt.Errorf("DOCQUERY_CHUNK_STRATEGY must be %q or %q, got %q",
			StrategyParagraph, StrategySentence, c.ChunkStrategy)
	}
	if c.VectorDim <= 0 {
		return fmt.Errorf("DOCQUERY_VECTOR_DIM must be positive, got %d", c.VectorDim)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("DOCQUERY_TOP_K must be positive, got %d", c.TopK)
	}
	if c.StoreBackend != BackendFile && c.StoreBackend != BackendCharm {
		return fmt.Errorf("DOCQUERY_STORE_BACKEND must be %q or %q, got %q",
			BackendFile, BackendCharm, c.StoreBackend)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("OPENAI_RETRY_DELAY must not be negative, got %v", c.RetryDelay)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
