// ABOUTME: Charm KV-backed vector store with cloud sync
// ABOUTME: Same exact-search semantics as the flat index, records under position keys
package index

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"docquery/internal/charm"
	"docquery/internal/models"
)

// KV is the slice of the charm client the store needs. Tests substitute an
// in-memory implementation.
type KV interface {
	SetJSON(key string, value interface{}) error
	GetJSON(key string, dest interface{}) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
	Sync() error
}

// storedRecord is the JSON value kept under each record key.
type storedRecord struct {
	Record models.VectorRecord `json:"record"`
	Vector []float64           `json:"vector"`
}

// CharmStore keeps vector records in Charm KV under zero-padded position
// keys, with the stored count under a meta key. Reads are position-driven up
// to the count, so keys beyond it are ignored; the count only advances after
// a whole batch has been written.
type CharmStore struct {
	dim int
	kv  KV

	mu    sync.RWMutex
	count int
}

// NewCharmStore opens a store of the given dimension over the KV client. A
// missing or unreadable count is logged and treated as an empty store.
func NewCharmStore(dim int, kvc KV) (*CharmStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}
	s := &CharmStore{dim: dim, kv: kvc}

	var count int
	if err := kvc.GetJSON(charm.CountKey(), &count); err != nil {
		log.Printf("Warning: could not read stored vector count, starting empty: %v", err)
		count = 0
	}
	s.count = count
	return s, nil
}

// Dimension returns the fixed vector dimension.
func (s *CharmStore) Dimension() int { return s.dim }

// NTotal reports the number of stored vectors.
func (s *CharmStore) NTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Add writes one stored record per pair and then advances the count. A
// dimension mismatch rejects the whole batch before any write.
func (s *CharmStore) Add(chunks []models.Chunk, embeddings [][]float64) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	for i, emb := range embeddings {
		if len(emb) != s.dim {
			return 0, fmt.Errorf("%w: expected %d, got %d (batch item %d)",
				ErrDimensionMismatch, s.dim, len(emb), i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.count
	for i := range chunks {
		sr := storedRecord{
			Record: models.RecordFromChunk(chunks[i], base+i),
			Vector: embeddings[i],
		}
		if err := s.kv.SetJSON(charm.RecordKey(base+i), sr); err != nil {
			// Count untouched; the partial keys sit above it and stay invisible
			return 0, fmt.Errorf("writing record %d: %w", base+i, err)
		}
	}

	if err := s.kv.SetJSON(charm.CountKey(), base+len(chunks)); err != nil {
		return 0, fmt.Errorf("updating vector count: %w", err)
	}
	s.count = base + len(chunks)
	return base, nil
}

// Search loads every stored vector and returns the k nearest by squared L2
// distance, ascending.
func (s *CharmStore) Search(query []float64, k int) ([]models.SearchResult, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, s.dim, len(query))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.count == 0 || k <= 0 {
		return nil, nil
	}

	var results []models.SearchResult
	for pos := 0; pos < s.count; pos++ {
		var sr storedRecord
		if err := s.kv.GetJSON(charm.RecordKey(pos), &sr); err != nil {
			log.Printf("Warning: skipping unreadable record %d: %v", pos, err)
			continue
		}
		results = append(results, models.SearchResult{
			VectorRecord: sr.Record,
			Score:        squaredL2(query, sr.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Get returns the record at a position; out-of-range positions report absence.
func (s *CharmStore) Get(position int) (models.VectorRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= s.count {
		return models.VectorRecord{}, false
	}
	var sr storedRecord
	if err := s.kv.GetJSON(charm.RecordKey(position), &sr); err != nil {
		return models.VectorRecord{}, false
	}
	return sr.Record, true
}

// GetMany returns the records at the given positions, skipping invalid ones.
func (s *CharmStore) GetMany(positions []int) []models.VectorRecord {
	out := make([]models.VectorRecord, 0, len(positions))
	for _, p := range positions {
		if rec, ok := s.Get(p); ok {
			out = append(out, rec)
		}
	}
	return out
}

// All returns every stored record in insertion order.
func (s *CharmStore) All() []models.VectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.VectorRecord, 0, s.count)
	for pos := 0; pos < s.count; pos++ {
		var sr storedRecord
		if err := s.kv.GetJSON(charm.RecordKey(pos), &sr); err != nil {
			continue
		}
		out = append(out, sr.Record)
	}
	return out
}

// Clear deletes every record key and resets the count. Listing by prefix
// also removes keys above the count, left behind by an interrupted batch.
func (s *CharmStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.ListKeys(charm.RecordPrefix)
	if err != nil {
		return fmt.Errorf("listing record keys: %w", err)
	}
	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	if err := s.kv.SetJSON(charm.CountKey(), 0); err != nil {
		return fmt.Errorf("resetting vector count: %w", err)
	}
	s.count = 0
	return nil
}

// Save pushes pending writes to the cloud.
func (s *CharmStore) Save() error {
	return s.kv.Sync()
}

// Close is handled by the owning charm client.
func (s *CharmStore) Close() error { return nil }
