// ABOUTME: Export functionality for indexed documents and chunks
// ABOUTME: Supports YAML and Markdown export formats
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData is the complete exportable view of an index.
type ExportData struct {
	Version      string           `yaml:"version" json:"version"`
	ExportedAt   string           `yaml:"exported_at" json:"exported_at"`
	Tool         string           `yaml:"tool" json:"tool"`
	TotalVectors int              `yaml:"total_vectors" json:"total_vectors"`
	Documents    []ExportDocument `yaml:"documents,omitempty" json:"documents,omitempty"`
}

// ExportDocument groups the chunks of one source document.
type ExportDocument struct {
	DocumentID   string        `yaml:"document_id" json:"document_id"`
	DocumentName string        `yaml:"document_name" json:"document_name"`
	DocumentPath string        `yaml:"document_path" json:"document_path"`
	Chunks       []ExportChunk `yaml:"chunks" json:"chunks"`
}

// ExportChunk is one indexed chunk for export.
type ExportChunk struct {
	ChunkID  string `yaml:"chunk_id" json:"chunk_id"`
	Position int    `yaml:"position" json:"position"`
	Length   int    `yaml:"length" json:"length"`
	Text     string `yaml:"text" json:"text"`
}

// Export collects every record in the store grouped by source document.
// Documents appear in order of their first indexed chunk; chunks within a
// document keep insertion order.
func Export(store Store) *ExportData {
	data := &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now().Format(time.RFC3339),
		Tool:         "docquery",
		TotalVectors: store.NTotal(),
	}

	byDoc := map[string]*ExportDocument{}
	firstSeen := map[string]int{}
	for _, rec := range store.All() {
		doc, ok := byDoc[rec.DocumentID]
		if !ok {
			doc = &ExportDocument{
				DocumentID:   rec.DocumentID,
				DocumentName: rec.DocumentName,
				DocumentPath: rec.DocumentPath,
			}
			byDoc[rec.DocumentID] = doc
			firstSeen[rec.DocumentID] = rec.Position
		}
		doc.Chunks = append(doc.Chunks, ExportChunk{
			ChunkID:  rec.ChunkID,
			Position: rec.Position,
			Length:   rec.Length,
			Text:     rec.Text,
		})
	}

	docs := make([]*ExportDocument, 0, len(byDoc))
	for _, d := range byDoc {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return firstSeen[docs[i].DocumentID] < firstSeen[docs[j].DocumentID]
	})
	for _, d := range docs {
		data.Documents = append(data.Documents, *d)
	}
	return data
}

// WriteYAML writes the export as YAML to the given path.
func (d *ExportData) WriteYAML(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	out, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// WriteMarkdown writes the export as a human-readable Markdown document.
func (d *ExportData) WriteMarkdown(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# docquery index export\n\n")
	fmt.Fprintf(&b, "Exported: %s\n\n", d.ExportedAt)
	fmt.Fprintf(&b, "Total vectors: %d\n\n", d.TotalVectors)

	for _, doc := range d.Documents {
		fmt.Fprintf(&b, "## %s\n\n", doc.DocumentName)
		fmt.Fprintf(&b, "Path: `%s`\n\n", doc.DocumentPath)
		for _, c := range doc.Chunks {
			fmt.Fprintf(&b, "### Chunk %d (`%s`, %d chars)\n\n", c.Position, c.ChunkID, c.Length)
			fmt.Fprintf(&b, "%s\n\n", c.Text)
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
