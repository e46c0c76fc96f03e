// Package glossary provides dictionary-term lookup for translation
// confidence scoring. The term content itself is an external concern; this
// package defines the source contract plus an in-memory implementation.
package glossary

import (
	"context"
	"strings"
	"sync"
)

// Term pairs a source-script expression with its English gloss.
type Term struct {
	Source  string `json:"source"`
	English string `json:"english"`
}

// Source supplies dictionary terms relevant to a piece of source text.
type Source interface {
	// TermsFor returns the terms whose source expression appears in text.
	TermsFor(ctx context.Context, text string) ([]Term, error)
}

// StaticSource is an in-memory Source backed by a fixed term list.
type StaticSource struct {
	mu    sync.RWMutex
	terms []Term
}

// NewStaticSource creates a StaticSource with the given terms.
func NewStaticSource(terms []Term) *StaticSource {
	return &StaticSource{terms: terms}
}

// TermsFor returns every term whose source expression occurs in text.
func (s *StaticSource) TermsFor(_ context.Context, text string) ([]Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Term
	for _, term := range s.terms {
		if term.Source != "" && strings.Contains(text, term.Source) {
			matched = append(matched, term)
		}
	}
	return matched, nil
}

// Add appends terms to the source.
func (s *StaticSource) Add(terms ...Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = append(s.terms, terms...)
}

// CoverageRatio returns the fraction of terms whose English gloss appears,
// case-insensitively, in translation. Returns 0 for an empty term list.
func CoverageRatio(terms []Term, translation string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(translation)
	found := 0
	for _, term := range terms {
		if term.English != "" && strings.Contains(lower, strings.ToLower(term.English)) {
			found++
		}
	}
	return float64(found) / float64(len(terms))
}
