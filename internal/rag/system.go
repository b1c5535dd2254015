// ABOUTME: Query orchestrator coordinating chunker, embedder, index and generator
// ABOUTME: Implements ingest, free-text query, structured query and index reset
package rag

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docquery/internal/chunker"
	"docquery/internal/config"
	"docquery/internal/index"
	"docquery/internal/models"
)

// Embedder turns texts into fixed-dimension vectors.
type Embedder interface {
	EmbedDocuments(texts []string) ([][]float64, error)
	EmbedQuery(text string) ([]float64, error)
}

// Generator produces answers from prompts, either as free text or
// constrained to a JSON schema.
type Generator interface {
	Generate(prompt string) (string, error)
	GenerateStructured(prompt string, schema map[string]interface{}) (models.StructuredResult, error)
}

const groundedPrompt = `You are a helpful assistant that answers questions based on the provided context.

Context:
%s

Question: %s

Answer the question based on the context above. If the context doesn't contain the answer, say "I don't have enough information to answer this question."

Provide a concise and accurate answer:`

const structuredGroundedPrompt = `You are a helpful assistant that answers questions based on the provided context.

Context:
%s

Question: %s

Answer the question based on the context above. If the context doesn't contain the answer, indicate this in your response.`

// sourcePreviewLen bounds the chunk text echoed back in source attributions.
const sourcePreviewLen = 200

// System wires the retrieval pipeline together. It is constructed once at
// process start and passed to every operation; the embedder and generator
// are interfaces so tests can substitute doubles.
type System struct {
	cfg       *config.Config
	embedder  Embedder
	generator Generator
	store     index.Store
	processor *chunker.Processor

	// Serializes mutations of the store. Searches take no lock here; the
	// store handles read concurrency itself.
	mu sync.Mutex
}

// NewSystem builds the orchestrator from its collaborators.
func NewSystem(cfg *config.Config, embedder Embedder, generator Generator, store index.Store) *System {
	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkStrategy)
	return &System{
		cfg:       cfg,
		embedder:  embedder,
		generator: generator,
		store:     store,
		processor: chunker.NewProcessor(splitter, cfg.FileExtensions),
	}
}

// Store exposes the underlying vector store for read-only consumers such as
// the export writer.
func (s *System) Store() index.Store {
	return s.store
}

// Ingest chunks every supported document under dir, embeds the chunks in one
// batch and appends them to the index, then persists. A directory with no
// processable documents produces an error-status report rather than an
// error; embedding and storage failures are real errors. Re-ingesting the
// same directory appends duplicate vectors for unchanged documents.
func (s *System) Ingest(dir string) (models.IngestReport, error) {
	if dir == "" {
		dir = s.cfg.DocumentsDir
	}
	batchID := uuid.New().String()
	log.Printf("Ingesting documents from %s (batch %s)", dir, batchID)

	chunks := s.processor.ProcessDirectory(dir)
	if len(chunks) == 0 {
		return models.IngestReport{
			Status:  models.StatusError,
			Message: "No documents found to process",
			BatchID: batchID,
		}, nil
	}
	log.Printf("Processed %d chunks from documents", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedDocuments(texts)
	if err != nil {
		return models.IngestReport{}, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Add(chunks, embeddings); err != nil {
		return models.IngestReport{}, fmt.Errorf("adding batch %s to index: %w", batchID, err)
	}
	if err := s.store.Save(); err != nil {
		return models.IngestReport{}, fmt.Errorf("persisting index after batch %s: %w", batchID, err)
	}

	return models.IngestReport{
		Status:          models.StatusSuccess,
		BatchID:         batchID,
		ChunksProcessed: len(chunks),
		TotalVectors:    s.store.NTotal(),
	}, nil
}

// Query answers a question grounded in the top-k retrieved chunks. topK <= 0
// falls back to the configured default.
func (s *System) Query(question string, topK int) (models.QueryResponse, error) {
	results, err := s.retrieve(question, topK)
	if err != nil {
		return models.QueryResponse{}, err
	}

	prompt := fmt.Sprintf(groundedPrompt, contextBlock(results), question)
	answer, err := s.generator.Generate(prompt)
	if err != nil {
		return models.QueryResponse{}, fmt.Errorf("generating answer: %w", err)
	}

	return models.QueryResponse{
		Question:  question,
		Answer:    strings.TrimSpace(answer),
		Sources:   sources(results),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// QueryStructured answers a question with output constrained to the given
// JSON schema. When the model's output cannot be parsed as JSON the answer
// degrades to a map carrying the error and the raw fallback text.
func (s *System) QueryStructured(question string, responseFormat map[string]interface{}, topK int) (models.QueryResponse, error) {
	results, err := s.retrieve(question, topK)
	if err != nil {
		return models.QueryResponse{}, err
	}

	prompt := fmt.Sprintf(structuredGroundedPrompt, contextBlock(results), question)
	result, err := s.generator.GenerateStructured(prompt, responseFormat)
	if err != nil {
		return models.QueryResponse{}, fmt.Errorf("generating structured answer: %w", err)
	}

	var answer interface{}
	if result.Parsed {
		answer = result.Object
	} else {
		answer = map[string]interface{}{
			"error":        "Failed to generate structured response",
			"raw_response": result.Raw,
		}
	}

	return models.QueryResponse{
		Question:  question,
		Answer:    answer,
		Sources:   sources(results),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ClearIndex discards all vectors and metadata and persists the empty state.
func (s *System) ClearIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("persisting cleared index: %w", err)
	}
	log.Printf("Vector store index cleared")
	return nil
}

// DocumentInfo describes one file in the documents directory.
type DocumentInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListDocuments enumerates the ingestable files in the configured documents
// directory. A missing directory yields an empty list.
func (s *System) ListDocuments() ([]DocumentInfo, error) {
	var docs []DocumentInfo
	for _, ext := range s.cfg.FileExtensions {
		matches, err := filepath.Glob(filepath.Join(s.cfg.DocumentsDir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("listing %s files: %w", ext, err)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			docs = append(docs, DocumentInfo{Name: info.Name(), Size: info.Size()})
		}
	}
	return docs, nil
}

// TotalVectors reports the current index size.
func (s *System) TotalVectors() int {
	return s.store.NTotal()
}

// Close releases the store's backend resources.
func (s *System) Close() error {
	return s.store.Close()
}

// retrieve validates the question, embeds it and returns the nearest chunks.
func (s *System) retrieve(question string, topK int) ([]models.SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	queryVec, err := s.embedder.EmbedQuery(question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := s.store.Search(queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}

// contextBlock formats retrieved chunks into one labeled context string.
func contextBlock(results []models.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Document %d, Score: %.2f]\n%s", i+1, r.Score, r.Text)
	}
	return strings.Join(parts, "\n\n")
}

// sources builds the attribution list with truncated chunk previews.
func sources(results []models.SearchResult) []models.Source {
	out := make([]models.Source, len(results))
	for i, r := range results {
		preview := r.Text
		if runes := []rune(preview); len(runes) > sourcePreviewLen {
			preview = string(runes[:sourcePreviewLen]) + "..."
		}
		out[i] = models.Source{
			Document: r.DocumentName,
			Score:    r.Score,
			Text:     preview,
		}
	}
	return out
}
