// Package quality scores translations and gates them against
// configurable thresholds.
package quality

import (
	"lotsawa/internal/models"
	"lotsawa/internal/textscript"
)

// Default component weights. Custom weights are normalized to sum 1;
// all-zero weights fall back to these.
const (
	defaultConfidenceWeight   = 0.4
	defaultFormatWeight       = 0.3
	defaultPreservationWeight = 0.3
)

// Weights configures the relative importance of each quality component.
type Weights struct {
	Confidence   float64
	Format       float64
	Preservation float64
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{
		Confidence:   defaultConfidenceWeight,
		Format:       defaultFormatWeight,
		Preservation: defaultPreservationWeight,
	}
}

// Scorer computes weighted quality scores for translations.
type Scorer struct {
	analyzer *textscript.Analyzer
	weights  Weights
}

// NewScorer creates a scorer with the given weights, normalized to sum 1.
func NewScorer(analyzer *textscript.Analyzer, weights Weights) *Scorer {
	sum := weights.Confidence + weights.Format + weights.Preservation
	if sum == 0 {
		weights = DefaultWeights()
		sum = 1
	}
	weights.Confidence /= sum
	weights.Format /= sum
	weights.Preservation /= sum
	return &Scorer{analyzer: analyzer, weights: weights}
}

// NewDefaultScorer creates a scorer with the default weights.
func NewDefaultScorer(analyzer *textscript.Analyzer) *Scorer {
	return NewScorer(analyzer, DefaultWeights())
}

// Score rates a translation result against its original text. Format is
// binary; preservation is the continuous fraction of source-script
// characters reproduced inside parentheses.
func (s *Scorer) Score(result models.TranslationResult, originalText string) models.QualityScore {
	confidence := result.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	format := 0.0
	if s.analyzer.FormatCompliant(result.Translation) {
		format = 1.0
	}

	preservation := s.analyzer.PreservedRatio(originalText, result.Translation)

	return models.QualityScore{
		Overall: s.weights.Confidence*confidence +
			s.weights.Format*format +
			s.weights.Preservation*preservation,
		Confidence:   confidence,
		Format:       format,
		Preservation: preservation,
	}
}
