// ABOUTME: Tests for the orchestrator using fake embedder and generator doubles
// ABOUTME: Covers ingest, query validation, structured fallback and index reset
package rag

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"docquery/internal/config"
	"docquery/internal/index"
	"docquery/internal/models"
)

// fakeEmbedder maps each text to a deterministic 3-dimensional vector based
// on its length, so distinct texts land at distinct points.
type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedDocuments(texts []string) ([][]float64, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedder unavailable")
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vectors[i] = []float64{float64(len(t)), float64(len(t) % 7), 1.0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(text string) ([]float64, error) {
	vecs, err := f.EmbedDocuments([]string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// fakeGenerator records prompts and returns canned output.
type fakeGenerator struct {
	prompts    []string
	answer     string
	structured models.StructuredResult
}

func (f *fakeGenerator) Generate(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

func (f *fakeGenerator) GenerateStructured(prompt string, schema map[string]interface{}) (models.StructuredResult, error) {
	f.prompts = append(f.prompts, prompt)
	return f.structured, nil
}

func newTestSystem(t *testing.T) (*System, *fakeEmbedder, *fakeGenerator, string) {
	t.Helper()
	docsDir := t.TempDir()
	store, err := index.NewFlat(3, filepath.Join(t.TempDir(), "vector_store.idx"))
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	cfg := &config.Config{
		DocumentsDir:   docsDir,
		FileExtensions: []string{".txt", ".md"},
		ChunkSize:      1000,
		ChunkOverlap:   200,
		ChunkStrategy:  config.StrategyParagraph,
		VectorDim:      3,
		TopK:           3,
	}
	embedder := &fakeEmbedder{}
	generator := &fakeGenerator{answer: "The sky is blue."}
	return NewSystem(cfg, embedder, generator, store), embedder, generator, docsDir
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
}

func TestIngest(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue because of Rayleigh scattering.")
	writeDoc(t, docsDir, "sea.txt", "The sea reflects the color of the sky above it.")

	report, err := system.Ingest("")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Expected success status, got %q (%s)", report.Status, report.Message)
	}
	if report.ChunksProcessed != 2 {
		t.Errorf("Expected 2 chunks processed, got %d", report.ChunksProcessed)
	}
	if report.TotalVectors != 2 {
		t.Errorf("Expected 2 total vectors, got %d", report.TotalVectors)
	}
	if report.BatchID == "" {
		t.Error("Expected a batch ID on the report")
	}
}

func TestIngest_EmptyDirectory(t *testing.T) {
	system, embedder, _, _ := newTestSystem(t)

	report, err := system.Ingest("")
	if err != nil {
		t.Fatalf("Expected report, not error, for empty directory: %v", err)
	}
	if report.Status != models.StatusError {
		t.Errorf("Expected error status, got %q", report.Status)
	}
	if embedder.calls != 0 {
		t.Error("Expected no embedding call for an empty directory")
	}
}

func TestIngest_ReingestAppendsDuplicates(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue because of Rayleigh scattering.")

	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	report, err := system.Ingest("")
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}
	if report.TotalVectors != 2 {
		t.Errorf("Expected duplicate vectors after re-ingest, got total %d", report.TotalVectors)
	}
}

func TestIngest_EmbedderFailure(t *testing.T) {
	system, embedder, _, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue.")
	embedder.fail = true

	if _, err := system.Ingest(""); err == nil {
		t.Error("Expected error when embedding fails")
	}
	if system.TotalVectors() != 0 {
		t.Errorf("Expected no vectors after failed ingest, got %d", system.TotalVectors())
	}
}

func TestQuery(t *testing.T) {
	system, _, generator, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue because of Rayleigh scattering.")
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := system.Query("Why is the sky blue?", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.Answer != "The sky is blue." {
		t.Errorf("Unexpected answer: %v", resp.Answer)
	}
	if resp.Question != "Why is the sky blue?" {
		t.Errorf("Unexpected question echo: %q", resp.Question)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Document != "sky.txt" {
		t.Errorf("Expected source document sky.txt, got %q", resp.Sources[0].Document)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("Timestamp is not RFC3339: %q", resp.Timestamp)
	}

	prompt := generator.prompts[len(generator.prompts)-1]
	if !strings.Contains(prompt, "[Document 1, Score:") {
		t.Errorf("Expected labeled context in prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Rayleigh scattering") {
		t.Error("Expected retrieved chunk text in prompt")
	}
	if !strings.Contains(prompt, "I don't have enough information to answer this question.") {
		t.Error("Expected grounding instruction in prompt")
	}
}

func TestQuery_EmptyQuestion(t *testing.T) {
	for _, question := range []string{"", "   ", "\n\t"} {
		system, embedder, generator, _ := newTestSystem(t)

		_, err := system.Query(question, 0)
		if !errors.Is(err, ErrEmptyQuestion) {
			t.Errorf("Query(%q): expected ErrEmptyQuestion, got %v", question, err)
		}
		if embedder.calls != 0 {
			t.Errorf("Query(%q): expected no embedding call", question)
		}
		if len(generator.prompts) != 0 {
			t.Errorf("Query(%q): expected no generation call", question)
		}
	}
}

func TestQuery_SourcePreviewTruncated(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	long := strings.Repeat("All work and no play makes Jack a dull boy. ", 10)
	writeDoc(t, docsDir, "novel.txt", long)
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := system.Query("What makes Jack dull?", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	preview := resp.Sources[0].Text
	if len(preview) != sourcePreviewLen+len("...") {
		t.Errorf("Expected %d-char preview plus ellipsis, got %d chars", sourcePreviewLen, len(preview))
	}
	if !strings.HasSuffix(preview, "...") {
		t.Error("Expected truncated preview to end with ellipsis")
	}
}

func TestQuery_SourcePreviewKeepsValidUTF8(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	// Multi-byte runes around the truncation boundary
	long := strings.Repeat("Der Später-Käufer zahlt die Gebühr. ", 10)
	writeDoc(t, docsDir, "agb.txt", long)
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	resp, err := system.Query("Wer zahlt die Gebühr?", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	preview := resp.Sources[0].Text
	if !utf8.ValidString(preview) {
		t.Errorf("Preview is not valid UTF-8: %q", preview)
	}
	runes := []rune(strings.TrimSuffix(preview, "..."))
	if len(runes) != sourcePreviewLen {
		t.Errorf("Expected %d-rune preview, got %d", sourcePreviewLen, len(runes))
	}
}

func TestQueryStructured(t *testing.T) {
	system, _, generator, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue because of Rayleigh scattering.")
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	generator.structured = models.StructuredResult{
		Parsed: true,
		Object: map[string]interface{}{"answer": "Rayleigh scattering", "confidence": 0.9},
	}

	schema := map[string]interface{}{"type": "object"}
	resp, err := system.QueryStructured("Why is the sky blue?", schema, 0)
	if err != nil {
		t.Fatalf("QueryStructured failed: %v", err)
	}
	answer, ok := resp.Answer.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map answer, got %T", resp.Answer)
	}
	if answer["answer"] != "Rayleigh scattering" {
		t.Errorf("Unexpected structured answer: %v", answer)
	}
}

func TestQueryStructured_FallbackAnswer(t *testing.T) {
	system, _, generator, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue.")
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	generator.structured = models.StructuredResult{Parsed: false, Raw: "I think it is blue."}

	resp, err := system.QueryStructured("Why is the sky blue?", map[string]interface{}{"type": "object"}, 0)
	if err != nil {
		t.Fatalf("QueryStructured failed: %v", err)
	}
	answer, ok := resp.Answer.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map answer, got %T", resp.Answer)
	}
	if answer["error"] == nil {
		t.Error("Expected error marker on fallback answer")
	}
	if answer["raw_response"] != "I think it is blue." {
		t.Errorf("Expected raw fallback text, got %v", answer["raw_response"])
	}
}

func TestQueryStructured_EmptyQuestion(t *testing.T) {
	system, _, _, _ := newTestSystem(t)

	_, err := system.QueryStructured("  ", map[string]interface{}{"type": "object"}, 0)
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}
}

func TestClearIndex(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue.")
	if _, err := system.Ingest(""); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if system.TotalVectors() == 0 {
		t.Fatal("Expected vectors before clear")
	}

	if err := system.ClearIndex(); err != nil {
		t.Fatalf("ClearIndex failed: %v", err)
	}
	if system.TotalVectors() != 0 {
		t.Errorf("Expected empty index after clear, got %d vectors", system.TotalVectors())
	}

	resp, err := system.Query("Why is the sky blue?", 0)
	if err != nil {
		t.Fatalf("Query after clear failed: %v", err)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("Expected no sources after clear, got %d", len(resp.Sources))
	}
}

func TestListDocuments(t *testing.T) {
	system, _, _, docsDir := newTestSystem(t)
	writeDoc(t, docsDir, "sky.txt", "The sky appears blue.")
	writeDoc(t, docsDir, "notes.md", "# Notes")
	writeDoc(t, docsDir, "image.png", "not ingestable")

	docs, err := system.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	names := map[string]bool{}
	for _, d := range docs {
		names[d.Name] = true
		if d.Size <= 0 {
			t.Errorf("Expected positive size for %s", d.Name)
		}
	}
	if !names["sky.txt"] || !names["notes.md"] {
		t.Errorf("Unexpected document set: %v", names)
	}
}

func TestListDocuments_MissingDirectory(t *testing.T) {
	system, _, _, _ := newTestSystem(t)
	system.cfg.DocumentsDir = filepath.Join(t.TempDir(), "does-not-exist")

	docs, err := system.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected empty list for missing directory, got %d", len(docs))
	}
}
