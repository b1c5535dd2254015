// ABOUTME: Document and directory processing for ingestion
// ABOUTME: Loads txt/md/pdf files, chunks them, and stamps provenance metadata
package chunker

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"docquery/internal/models"
)

// Processor loads documents from disk and turns them into chunks with
// document provenance metadata.
type Processor struct {
	splitter   *Splitter
	extensions []string
}

// NewProcessor creates a Processor that accepts files with the given
// extensions (e.g. ".txt", ".md", ".pdf").
func NewProcessor(splitter *Splitter, extensions []string) *Processor {
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".pdf"}
	}
	return &Processor{splitter: splitter, extensions: extensions}
}

// LoadDocument reads the text content of a single document file. PDF files
// are extracted to plain text; everything else is read as UTF-8 text.
func (p *Processor) LoadDocument(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// ProcessDocument loads one file, chunks its text, and stamps every chunk
// with the document's identity.
func (p *Processor) ProcessDocument(path string) ([]models.Chunk, error) {
	text, err := p.LoadDocument(path)
	if err != nil {
		return nil, err
	}

	chunks := p.splitter.SplitText(text)

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for i := range chunks {
		chunks[i].DocumentID = stem
		chunks[i].DocumentPath = path
		chunks[i].DocumentName = name
	}
	return chunks, nil
}

// ProcessDirectory processes every matching file in a flat directory and
// concatenates their chunks in file-iteration order. A file that fails to
// load is logged and skipped; it never aborts the remaining files. Order
// across files follows filesystem glob order and is not guaranteed stable.
func (p *Processor) ProcessDirectory(dir string) []models.Chunk {
	var files []string
	for _, ext := range p.extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			log.Printf("Error globbing %s for %s: %v", dir, ext, err)
			continue
		}
		files = append(files, matches...)
	}

	var all []models.Chunk
	for _, file := range files {
		chunks, err := p.ProcessDocument(file)
		if err != nil {
			log.Printf("Error processing %s: %v", file, err)
			continue
		}
		all = append(all, chunks...)
	}
	return all
}

// loadPDF extracts the plain text of a PDF file.
func loadPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("reading pdf text from %s: %w", path, err)
	}
	return buf.String(), nil
}
