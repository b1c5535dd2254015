// ABOUTME: Splitter turns raw document text into bounded, overlapping chunks
// ABOUTME: Implements paragraph/heading-aware and sentence-based strategies
package chunker

import (
	"strings"
	"unicode"

	"docquery/internal/config"
	"docquery/internal/models"
)

// headingMaxLen is the length below which an all-uppercase paragraph is
// treated as a heading.
const headingMaxLen = 100

// Splitter splits text into chunks bounded by ChunkSize with inter-chunk
// overlap. Strategy selects between the paragraph/heading-aware algorithm
// (default) and the simpler sentence-based one; they produce materially
// different chunk boundaries.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Strategy     string
}

// NewSplitter creates a Splitter with the given bounds and strategy.
func NewSplitter(chunkSize, chunkOverlap int, strategy string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if strategy == "" {
		strategy = config.StrategyParagraph
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Strategy:     strategy,
	}
}

// SplitText splits raw text into an ordered sequence of chunks. Empty or
// whitespace-only text yields an empty sequence.
func (s *Splitter) SplitText(text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if s.Strategy == config.StrategySentence {
		return s.splitSentenceWise(text)
	}
	return s.splitParagraphWise(text)
}

// splitParagraphWise accumulates paragraphs into chunks up to ChunkSize,
// keeps headings at chunk starts, and carries the last one or two paragraphs
// of a finalized chunk into the next one as overlap. Chunks that still
// exceed the bound afterward (a single oversized paragraph) are re-split at
// sentence boundaries.
func (s *Splitter) splitParagraphWise(text string) []models.Chunk {
	paragraphs := splitParagraphs(text)

	var chunks []models.Chunk
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, models.NewChunk(strings.Join(current, "\n\n")))
	}

	for _, para := range paragraphs {
		isHeading := isHeading(para)

		// Finalize the pending chunk before this paragraph would overflow it
		if len(current) > 0 && currentLen+len(para) > s.ChunkSize {
			flush()

			// Seed the next chunk with the last 1-2 paragraphs as overlap
			overlap := len(current)
			if overlap > 2 {
				overlap = 2
			}
			current = append([]string(nil), current[len(current)-overlap:]...)
			currentLen = 0
			for _, p := range current {
				currentLen += len(p) + 2
			}
		}

		current = append(current, para)
		currentLen += len(para) + 2

		// A heading must start the next chunk, not trail the current one
		if isHeading && len(current) > 1 {
			heading := current[len(current)-1]
			current = current[:len(current)-1]
			flush()
			current = []string{heading}
			currentLen = len(heading)
		}
	}
	flush()

	// Re-split anything still over the bound at sentence boundaries
	var final []models.Chunk
	for _, c := range chunks {
		if c.Length <= s.ChunkSize {
			final = append(final, c)
			continue
		}
		final = append(final, s.resplitBySentence(c.Text)...)
	}
	return final
}

// resplitBySentence groups the sentences of an oversized chunk into
// sub-chunks within ChunkSize. A single sentence longer than ChunkSize is
// emitted whole and may exceed the bound.
func (s *Splitter) resplitBySentence(text string) []models.Chunk {
	sentences := splitSentences(text)

	var chunks []models.Chunk
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		if len(current) > 0 && currentLen+len(sentence) > s.ChunkSize {
			chunks = append(chunks, models.NewChunk(strings.Join(current, " ")))
			current = nil
			currentLen = 0
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, models.NewChunk(strings.Join(current, " ")))
	}
	return chunks
}

// splitSentenceWise ignores paragraph structure entirely: sentences are
// accumulated into chunks up to ChunkSize, and overlap is carried as a word
// count approximated from ChunkOverlap.
func (s *Splitter) splitSentenceWise(text string) []models.Chunk {
	sentences := splitSentences(text)

	// Approximate words from characters; five characters per word on average
	overlapWords := s.ChunkOverlap / 5

	var chunks []models.Chunk
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		if len(current) > 0 && currentLen+len(sentence) > s.ChunkSize {
			chunkText := strings.Join(current, " ")
			chunks = append(chunks, models.NewChunk(chunkText))

			current = nil
			currentLen = 0
			if overlapWords > 0 {
				words := strings.Fields(chunkText)
				if len(words) > overlapWords {
					words = words[len(words)-overlapWords:]
				}
				carry := strings.Join(words, " ")
				current = []string{carry}
				currentLen = len(carry) + 1
			}
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, models.NewChunk(strings.Join(current, " ")))
	}
	return chunks
}

// splitParagraphs splits text on blank lines, trimming each paragraph and
// discarding empty ones.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(normalized, "\n\n")

	var paragraphs []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// splitSentences splits text at whitespace that follows sentence-ending
// punctuation (. ! ?), keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	prevEndsSentence := false

	for _, r := range text {
		if unicode.IsSpace(r) && prevEndsSentence {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
			prevEndsSentence = false
			continue
		}
		b.WriteRune(r)
		if !unicode.IsSpace(r) {
			prevEndsSentence = r == '.' || r == '!' || r == '?'
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isHeading reports whether a paragraph looks like a heading or title: it
// ends with a colon, or is short and fully upper-case.
func isHeading(para string) bool {
	if strings.HasSuffix(para, ":") {
		return true
	}
	if len(para) >= headingMaxLen {
		return false
	}
	hasLetter := false
	for _, r := range para {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
