// ABOUTME: Flat exact-search vector index with file persistence
// ABOUTME: Parallel vector/metadata arrays saved as binary blob + JSON sidecar
package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"docquery/internal/models"
)

// File format of the index blob: magic, version, dimension, vector count,
// then count*dim float64 values, all little-endian. Metadata lives in a JSON
// sidecar at <path>.json with one record per vector in insertion order.
const (
	indexMagic   = "DQIX"
	indexVersion = uint32(1)
)

// Flat is a brute-force squared-L2 index over fixed-dimension vectors. The
// record at position i in records always corresponds to the vector at
// position i in vectors; every mutation appends to both under the write lock
// or touches neither.
type Flat struct {
	dim  int
	path string

	mu      sync.RWMutex
	vectors [][]float64
	records []models.VectorRecord
}

// NewFlat creates a flat index of the given dimension backed by the two
// artifacts at path. A previously persisted index is loaded; missing or
// corrupt artifacts are logged and replaced with a fresh empty index so
// startup never blocks on bad state.
func NewFlat(dim int, path string) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}
	f := &Flat{dim: dim, path: path}
	if err := f.load(); err != nil {
		log.Printf("Warning: could not load index from %s, starting empty: %v", path, err)
		f.vectors = nil
		f.records = nil
	}
	return f, nil
}

// Dimension returns the fixed vector dimension.
func (f *Flat) Dimension() int { return f.dim }

// NTotal reports the number of stored vectors.
func (f *Flat) NTotal() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Add appends the batch to both containers, assigning each record its
// absolute position. Dimensions are validated up front so a mismatch leaves
// the index untouched.
func (f *Flat) Add(chunks []models.Chunk, embeddings [][]float64) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	for i, emb := range embeddings {
		if len(emb) != f.dim {
			return 0, fmt.Errorf("%w: expected %d, got %d (batch item %d)",
				ErrDimensionMismatch, f.dim, len(emb), i)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	base := len(f.vectors)
	for i := range chunks {
		f.vectors = append(f.vectors, embeddings[i])
		f.records = append(f.records, models.RecordFromChunk(chunks[i], base+i))
	}
	return base, nil
}

// Search computes the exact squared L2 distance from the query to every
// stored vector and returns the k closest in ascending order.
func (f *Flat) Search(query []float64, k int) ([]models.SearchResult, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, f.dim, len(query))
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}

	type hit struct {
		pos   int
		score float64
	}
	hits := make([]hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = hit{pos: i, score: squaredL2(query, vec)}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].score < hits[j].score })

	if k > len(hits) {
		k = len(hits)
	}
	results := make([]models.SearchResult, 0, k)
	for _, h := range hits[:k] {
		// Bound check guards against any index/metadata divergence
		if h.pos < 0 || h.pos >= len(f.records) {
			continue
		}
		results = append(results, models.SearchResult{
			VectorRecord: f.records[h.pos],
			Score:        h.score,
		})
	}
	return results, nil
}

// Get returns the record at a position; out-of-range positions report absence.
func (f *Flat) Get(position int) (models.VectorRecord, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if position < 0 || position >= len(f.records) {
		return models.VectorRecord{}, false
	}
	return f.records[position], true
}

// GetMany returns the records at the given positions, skipping invalid ones.
func (f *Flat) GetMany(positions []int) []models.VectorRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.VectorRecord, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(f.records) {
			continue
		}
		out = append(out, f.records[p])
	}
	return out
}

// All returns a copy of every stored record in insertion order.
func (f *Flat) All() []models.VectorRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.VectorRecord, len(f.records))
	copy(out, f.records)
	return out
}

// Clear discards vectors and metadata together.
func (f *Flat) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = nil
	f.records = nil
	return nil
}

// Save writes the index blob and the metadata sidecar so that a subsequent
// load restores an identical index.
func (f *Flat) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
	}

	blob := make([]byte, 0, 16+len(f.vectors)*f.dim*8)
	blob = append(blob, indexMagic...)
	blob = binary.LittleEndian.AppendUint32(blob, indexVersion)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(f.dim))
	blob = binary.LittleEndian.AppendUint32(blob, uint32(len(f.vectors)))
	for _, vec := range f.vectors {
		for _, v := range vec {
			blob = binary.LittleEndian.AppendUint64(blob, math.Float64bits(v))
		}
	}
	if err := os.WriteFile(f.path, blob, 0o644); err != nil {
		return fmt.Errorf("writing index blob: %w", err)
	}

	meta, err := json.Marshal(f.records)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(f.metadataPath(), meta, 0o644); err != nil {
		return fmt.Errorf("writing metadata sidecar: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *Flat) Close() error { return nil }

func (f *Flat) metadataPath() string { return f.path + ".json" }

// load restores both artifacts. Any inconsistency is an error; the caller
// resets to empty.
func (f *Flat) load() error {
	blob, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil // fresh index
	}
	if err != nil {
		return fmt.Errorf("reading index blob: %w", err)
	}

	if len(blob) < 16 || string(blob[:4]) != indexMagic {
		return fmt.Errorf("index blob at %s is not a valid index file", f.path)
	}
	version := binary.LittleEndian.Uint32(blob[4:8])
	if version != indexVersion {
		return fmt.Errorf("unsupported index version %d", version)
	}
	dim := int(binary.LittleEndian.Uint32(blob[8:12]))
	count := int(binary.LittleEndian.Uint32(blob[12:16]))
	if dim != f.dim {
		return fmt.Errorf("index dimension %d does not match configured %d", dim, f.dim)
	}
	if len(blob) != 16+count*dim*8 {
		return fmt.Errorf("index blob truncated: have %d bytes, want %d", len(blob), 16+count*dim*8)
	}

	vectors := make([][]float64, count)
	off := 16
	for i := 0; i < count; i++ {
		vec := make([]float64, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float64frombits(binary.LittleEndian.Uint64(blob[off:]))
			off += 8
		}
		vectors[i] = vec
	}

	meta, err := os.ReadFile(f.metadataPath())
	if err != nil {
		return fmt.Errorf("reading metadata sidecar: %w", err)
	}
	var records []models.VectorRecord
	if err := json.Unmarshal(meta, &records); err != nil {
		return fmt.Errorf("parsing metadata sidecar: %w", err)
	}
	if len(records) != count {
		return fmt.Errorf("metadata length %d does not match vector count %d", len(records), count)
	}

	f.vectors = vectors
	f.records = records
	log.Printf("Loaded index with %d vectors from %s", count, f.path)
	return nil
}

// squaredL2 returns the squared Euclidean distance between two equal-length
// vectors.
func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
