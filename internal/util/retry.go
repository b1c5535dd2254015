// ABOUTME: Retry utilities for model API calls with exponential backoff
// ABOUTME: Shared by the embedding and generation client
package util

import (
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter.
// The base delay doubles each attempt, capped at 30 seconds, with random
// jitter of up to 25% in either direction.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in the bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	// A non-positive base delay means retry immediately, no jitter to draw
	half := int64(backoff) / 2
	if half <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}
