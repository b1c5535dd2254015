// ABOUTME: VectorRecord is the stored retrievable unit in the vector index
// ABOUTME: SearchResult annotates a record with its query distance
package models

// VectorRecord combines a chunk's text and metadata with its absolute
// position in the vector index. The record at position i in the metadata
// sequence always corresponds to the embedding at position i in the index;
// Position is assigned by the index at insertion time and never changes.
type VectorRecord struct {
	Text         string `json:"text"`
	ChunkID      string `json:"chunk_id"`
	Length       int    `json:"length"`
	DocumentID   string `json:"document_id"`
	DocumentPath string `json:"document_path"`
	DocumentName string `json:"document_name"`
	Position     int    `json:"index"`
}

// RecordFromChunk converts a Chunk into a VectorRecord at the given index
// position.
func RecordFromChunk(c Chunk, position int) VectorRecord {
	return VectorRecord{
		Text:         c.Text,
		ChunkID:      c.ChunkID,
		Length:       c.Length,
		DocumentID:   c.DocumentID,
		DocumentPath: c.DocumentPath,
		DocumentName: c.DocumentName,
		Position:     position,
	}
}

// SearchResult is a retrieved record plus its squared L2 distance to the
// query vector. Smaller score means more relevant. Not persisted.
type SearchResult struct {
	VectorRecord
	Score float64 `json:"score"`
}
