// Package consensus reconciles translations from multiple providers into
// a single result: semantic agreement over embeddings, confidence
// calculation, and weighted candidate selection.
package consensus

import (
	"context"
	"fmt"
	"math"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/provider"
)

// SemanticCalculator measures how much a set of texts agree with each
// other using embedding cosine similarity.
type SemanticCalculator struct {
	embedder provider.Embedder
}

// NewSemanticCalculator creates a calculator over the given embedder.
func NewSemanticCalculator(embedder provider.Embedder) *SemanticCalculator {
	return &SemanticCalculator{embedder: embedder}
}

// Agreement returns the mean pairwise cosine similarity of the texts,
// in [0,1]. Empty input scores 0; a single text scores exactly 1.
func (s *SemanticCalculator) Agreement(ctx context.Context, texts []string) (float64, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	if len(texts) == 1 {
		return 1.0, nil
	}

	matrix, err := s.Pairwise(ctx, texts)
	if err != nil {
		return 0, err
	}

	var sum float64
	var pairs int
	for i := 0; i < len(matrix); i++ {
		for j := i + 1; j < len(matrix); j++ {
			sum += matrix[i][j]
			pairs++
		}
	}
	return sum / float64(pairs), nil
}

// Pairwise returns the symmetric pairwise similarity matrix for the
// texts, with a 1.0 diagonal, from a single batch embedding call.
func (s *SemanticCalculator) Pairwise(ctx context.Context, texts []string) ([][]float64, error) {
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, app_errors.Permanent(fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts)))
	}

	matrix := make([][]float64, len(vectors))
	for i := range matrix {
		matrix[i] = make([]float64, len(vectors))
		matrix[i][i] = 1.0
	}
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sim, err := cosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				return nil, err
			}
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix, nil
}

// cosineSimilarity returns dot(a,b)/(|a|*|b|) clamped to [0,1]. A zero
// vector yields 0 instead of NaN.
func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, app_errors.Permanent(fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0, nil
	}
	if sim > 1 {
		return 1, nil
	}
	return sim, nil
}
