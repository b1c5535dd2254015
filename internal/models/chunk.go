// ABOUTME: Chunk represents a bounded span of document text for retrieval
// ABOUTME: Carries content-derived identity and source-document provenance
package models

import (
	"crypto/md5"
	"encoding/hex"
)

// Chunk is a contiguous span of document text selected for independent
// retrieval. Chunks are created during ingestion, embedded once, and then
// discarded; only their text and metadata survive into the stored
// VectorRecord.
type Chunk struct {
	Text         string `json:"text"`
	ChunkID      string `json:"chunk_id"`
	Length       int    `json:"length"`
	DocumentID   string `json:"document_id"`
	DocumentPath string `json:"document_path"`
	DocumentName string `json:"document_name"`
}

// NewChunk builds a Chunk from finalized text, deriving ChunkID and Length so
// neither can disagree with the text.
func NewChunk(text string) Chunk {
	return Chunk{
		Text:    text,
		ChunkID: ChunkID(text),
		Length:  len(text),
	}
}

// ChunkID returns the stable content hash used as chunk identity.
// Identical text always yields an identical ID.
func ChunkID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
