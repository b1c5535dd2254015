// ABOUTME: Store interface for exact nearest-neighbor vector storage
// ABOUTME: Shared by the file-backed flat index and the Charm KV backend
package index

import (
	"errors"

	"docquery/internal/models"
)

// ErrDimensionMismatch is returned when a vector's length disagrees with the
// dimension fixed at store construction. The whole batch is rejected.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store is an exact nearest-neighbor store over fixed-dimension vectors with
// insertion-order-parallel metadata. Records are append-only; there is no
// per-record deletion, only Clear.
type Store interface {
	// Add appends one record per (chunk, embedding) pair in zip order and
	// returns the position assigned to the first record of the batch. Every
	// embedding must match the store dimension; on mismatch nothing is
	// inserted.
	Add(chunks []models.Chunk, embeddings [][]float64) (int, error)

	// Search returns up to k records ordered by ascending squared L2
	// distance to the query vector. An empty store yields an empty result.
	Search(query []float64, k int) ([]models.SearchResult, error)

	// Get returns the record at a position, reporting absence for
	// out-of-range positions instead of failing.
	Get(position int) (models.VectorRecord, bool)

	// GetMany returns the records at the given positions, skipping
	// out-of-range ones.
	GetMany(positions []int) []models.VectorRecord

	// All returns every stored record in insertion order.
	All() []models.VectorRecord

	// NTotal reports the number of stored vectors.
	NTotal() int

	// Clear discards all vectors and metadata in one step. Callers that need
	// the reset to be durable must Save afterward.
	Clear() error

	// Save persists the store to its configured location.
	Save() error

	// Close releases backend resources.
	Close() error
}
