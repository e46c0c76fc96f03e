// Package pipeline implements the asynchronous translation job pipeline:
// the durable FIFO queue, the per-job worker with retry, the progress
// tracker, and the text chunker.
package pipeline

import (
	"strings"
	"unicode"

	"lotsawa/internal/models"
)

// defaultContextWords is the size of the sliding context window carried
// between chunks.
const defaultContextWords = 25

// SplitChunks splits text into translation chunks of at most maxChars
// runes, preferring paragraph boundaries, then sentence-ending
// punctuation, then whitespace, then a hard cut. Each chunk after the
// first carries the tail of the previous chunk as context.
func SplitChunks(text string, maxChars int) []models.TranslationChunk {
	pieces := splitText(text, maxChars)

	chunks := make([]models.TranslationChunk, len(pieces))
	for i, piece := range pieces {
		chunk := models.TranslationChunk{PageNumber: i + 1, Content: piece}
		if i > 0 {
			chunk.Context = extractContext(pieces[i-1], defaultContextWords)
		}
		chunks[i] = chunk
	}
	return chunks
}

func splitText(text string, maxChars int) []string {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var pieces []string
	remaining := text
	for len([]rune(remaining)) > maxChars {
		split := findSplit(remaining, maxChars)
		piece := strings.TrimSpace(remaining[:split])
		if piece != "" {
			pieces = append(pieces, piece)
		}
		remaining = strings.TrimSpace(remaining[split:])
	}
	if strings.TrimSpace(remaining) != "" {
		pieces = append(pieces, strings.TrimSpace(remaining))
	}
	return pieces
}

// findSplit returns the byte index at which to split, aiming for at most
// maxChars runes, searching backwards for the best boundary.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}
	candidate := string(runes[:maxChars])
	candidateRunes := runes[:maxChars]

	if idx := strings.LastIndex(candidate, "\n\n"); idx > 0 {
		return idx + 2
	}

	for i := len(candidateRunes) - 1; i > 0; i-- {
		r := candidateRunes[i]
		if (r == '.' || r == '!' || r == '?' || r == '།') && i+1 < len(candidateRunes) {
			if unicode.IsSpace(candidateRunes[i+1]) {
				return len(string(candidateRunes[:i+1]))
			}
		}
	}

	for i := len(candidateRunes) - 1; i > 0; i-- {
		if unicode.IsSpace(candidateRunes[i]) {
			return len(string(candidateRunes[:i]))
		}
	}

	return len(candidate)
}

// extractContext returns the last wordCount whitespace-separated words of
// text, for use as continuity context on the next chunk.
func extractContext(text string, wordCount int) string {
	words := strings.Fields(text)
	if len(words) > wordCount {
		words = words[len(words)-wordCount:]
	}
	return strings.Join(words, " ")
}
