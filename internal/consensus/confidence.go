package consensus

import (
	"lotsawa/internal/glossary"
	"lotsawa/internal/textscript"
)

// Confidence bounds after boosting. The floor keeps downstream weighting
// from zeroing a result out entirely; the cap leaves room for doubt.
const (
	MinConfidence = 0.1
	MaxConfidence = 0.98
)

// Boost ceilings per signal.
const (
	dictionaryBoostMax   = 0.15
	formatBoostMax       = 0.10
	preservationBoostMax = 0.10
	semanticBoostMax     = 0.15
)

// ConfidenceOptions carries the signals feeding a confidence calculation.
type ConfidenceOptions struct {
	OriginalText      string
	DictionaryTerms   []glossary.Term
	BaseConfidence    float64
	MultipleModels    bool
	SemanticAgreement float64
}

// ConfidenceCalculator derives a bounded confidence score from a
// translation and its quality signals.
type ConfidenceCalculator struct {
	analyzer *textscript.Analyzer
}

// NewConfidenceCalculator creates a calculator using the given script
// analyzer.
func NewConfidenceCalculator(analyzer *textscript.Analyzer) *ConfidenceCalculator {
	return &ConfidenceCalculator{analyzer: analyzer}
}

// Calculate returns a confidence in [MinConfidence, MaxConfidence].
// Starting from the clamped base, it adds boosts for glossary coverage,
// format compliance, source-script preservation and, with multiple
// models, semantic agreement.
func (c *ConfidenceCalculator) Calculate(translation string, opts ConfidenceOptions) float64 {
	base := opts.BaseConfidence
	if base == 0 {
		base = 0.5
	}
	base = clamp(base, 0, 1)

	score := base

	if len(opts.DictionaryTerms) > 0 {
		score += dictionaryBoostMax * glossary.CoverageRatio(opts.DictionaryTerms, translation)
	}

	if c.analyzer.FormatCompliant(translation) {
		score += formatBoostMax
	}

	if opts.OriginalText != "" {
		score += preservationBoostMax * c.analyzer.PreservedRatio(opts.OriginalText, translation)
	}

	if opts.MultipleModels {
		score += semanticBoostMax * clamp(opts.SemanticAgreement, 0, 1)
	}

	return clamp(score, MinConfidence, MaxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
