package consensus

import (
	"context"
	"errors"
	"fmt"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
)

// ErrNoResults is returned when consensus is requested over zero
// candidates.
var ErrNoResults = errors.New("no translation results to build consensus from")

// Candidate is one provider's translation entering consensus.
type Candidate struct {
	Provider string
	Result   models.TranslationResult
}

// Result is a reconciled translation with its consensus metadata.
type Result struct {
	Result   models.TranslationResult
	Metadata models.ConsensusMetadata
}

// Builder picks the best candidate by confidence-weighted agreement and
// boosts its confidence accordingly.
type Builder struct {
	semantic   *SemanticCalculator
	confidence *ConfidenceCalculator
}

// NewBuilder creates a consensus builder.
func NewBuilder(semantic *SemanticCalculator, confidence *ConfidenceCalculator) *Builder {
	return &Builder{semantic: semantic, confidence: confidence}
}

// Build reconciles the candidates against the original text. Each
// candidate is weighted by its confidence times its mean agreement with
// the other candidates; the max-weight candidate wins, ties broken by
// input order. The winner's confidence is re-derived with the agreement
// score folded in.
func (b *Builder) Build(ctx context.Context, candidates []Candidate, originalText string, opts ConfidenceOptions) (*Result, error) {
	if len(candidates) == 0 {
		return nil, app_errors.Permanent(ErrNoResults)
	}

	if len(candidates) == 1 {
		only := candidates[0]
		return &Result{
			Result: only.Result,
			Metadata: models.ConsensusMetadata{
				Consensus:      false,
				ModelsUsed:     []string{only.Provider},
				ModelAgreement: 1.0,
			},
		}, nil
	}

	texts := make([]string, len(candidates))
	providers := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Result.Translation
		providers[i] = c.Provider
	}

	matrix, err := b.semantic.Pairwise(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to compute agreement: %w", err)
	}

	best := 0
	bestWeight := -1.0
	var agreementSum float64
	var pairCount int
	for i := range candidates {
		var meanAgreement float64
		for j := range candidates {
			if i == j {
				continue
			}
			meanAgreement += matrix[i][j]
			if j > i {
				agreementSum += matrix[i][j]
				pairCount++
			}
		}
		meanAgreement /= float64(len(candidates) - 1)

		weight := candidates[i].Result.Confidence * meanAgreement
		if weight > bestWeight {
			bestWeight = weight
			best = i
		}
	}
	overallAgreement := agreementSum / float64(pairCount)

	winner := candidates[best].Result
	opts.OriginalText = originalText
	opts.MultipleModels = true
	opts.SemanticAgreement = overallAgreement
	opts.BaseConfidence = winner.Confidence
	winner.Confidence = b.confidence.Calculate(winner.Translation, opts)

	return &Result{
		Result: winner,
		Metadata: models.ConsensusMetadata{
			Consensus:      true,
			ModelsUsed:     providers,
			ModelAgreement: overallAgreement,
		},
	}, nil
}
