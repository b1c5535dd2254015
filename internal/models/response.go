// ABOUTME: Result types returned by the RAG orchestrator operations
// ABOUTME: IngestReport, QueryResponse and source attribution structures
package models

// Ingest status values reported by IngestReport.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	BatchID         string `json:"batch_id,omitempty"`
	ChunksProcessed int    `json:"chunks_processed,omitempty"`
	TotalVectors    int    `json:"total_vectors,omitempty"`
}

// Source attributes part of an answer to a retrieved chunk. Text holds a
// preview truncated to at most 200 characters.
type Source struct {
	Document string  `json:"document"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// QueryResponse is the answer to one question. Answer is a string for
// free-text generation and a decoded JSON object for structured generation.
type QueryResponse struct {
	Question  string      `json:"question"`
	Answer    interface{} `json:"answer"`
	Sources   []Source    `json:"sources"`
	Timestamp string      `json:"timestamp"`
}

// StructuredResult is the outcome of a schema-constrained generation call.
// When Parsed is false the model output could not be decoded as JSON and Raw
// carries the fallback free-text answer instead; callers branch on the flag
// rather than catching a parse error.
type StructuredResult struct {
	Parsed bool
	Object map[string]interface{}
	Raw    string
}
