// ABOUTME: Error values returned by the query orchestrator
// ABOUTME: Validation failures callers are expected to branch on
package rag

import "errors"

// ErrEmptyQuestion is returned when a query is empty or whitespace-only.
// No embedding or generation call is made in that case.
var ErrEmptyQuestion = errors.New("question must not be empty")
