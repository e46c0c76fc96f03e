package quality

import (
	"testing"

	"lotsawa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate() *Gate {
	return NewGate(newScorer())
}

func TestGatePassesCompliantResult(t *testing.T) {
	result := models.TranslationResult{
		Translation: "I take refuge in the Buddha, Dharma and Sangha (" + tibetanRefuge + ")",
		Confidence:  0.95,
	}

	gate := newGate().Check(result, tibetanRefuge)

	assert.True(t, gate.Passed)
	assert.Empty(t, gate.Failures)
}

func TestGateRejectsLowConfidence(t *testing.T) {
	result := models.TranslationResult{
		Translation: "refuge (" + tibetanRefuge + ")",
		Confidence:  0.3,
	}

	gate := newGate().Check(result, tibetanRefuge)

	assert.False(t, gate.Passed)
	require.NotEmpty(t, gate.Failures)
	failure := gate.Failures[0]
	assert.Equal(t, "confidence", failure.Gate)
	assert.Equal(t, models.GateActionReject, failure.Action)
	assert.Equal(t, 0.7, failure.Threshold)
	assert.InDelta(t, 0.3, failure.Actual, 1e-9)
	assert.Contains(t, failure.Message, "0.30")
	assert.Contains(t, failure.Message, "0.70")
}

func TestGateWarnFailureDoesNotBlock(t *testing.T) {
	// Non-compliant format scores 0 and fails the warn-action format
	// rule, but the reject rules pass.
	result := models.TranslationResult{
		Translation: "no parens but fine otherwise",
		Confidence:  0.9,
	}

	gate := newGate().Check(result, "plain source")

	assert.True(t, gate.Passed, "warn failures never flip passed")
	require.NotEmpty(t, gate.Failures)
	var sawFormat bool
	for _, f := range gate.Failures {
		if f.Gate == "format" {
			sawFormat = true
			assert.Equal(t, models.GateActionWarn, f.Action)
		}
	}
	assert.True(t, sawFormat)
}

func TestGateRejectsPoorPreservation(t *testing.T) {
	result := models.TranslationResult{
		Translation: "refuge (སངས)",
		Confidence:  0.9,
	}

	gate := newGate().Check(result, tibetanRefuge)

	assert.False(t, gate.Passed)
	var sawPreservation bool
	for _, f := range gate.Failures {
		if f.Gate == "preservation" {
			sawPreservation = true
			assert.Equal(t, models.GateActionReject, f.Action)
		}
	}
	assert.True(t, sawPreservation)
}

func TestGateAddRemoveRules(t *testing.T) {
	gate := newGate()

	rule := GateRule{
		Name:      "overall",
		Threshold: 0.99,
		Action:    models.GateActionReject,
		Extract:   func(q models.QualityScore) float64 { return q.Overall },
	}
	require.NoError(t, gate.AddRule(rule))
	assert.Error(t, gate.AddRule(rule), "duplicate rule names are rejected")

	result := models.TranslationResult{
		Translation: "I take refuge in the Buddha, Dharma and Sangha (" + tibetanRefuge + ")",
		Confidence:  0.95,
	}
	check := gate.Check(result, tibetanRefuge)
	assert.False(t, check.Passed, "the strict overall rule rejects")

	require.NoError(t, gate.RemoveRule("overall"))
	assert.Error(t, gate.RemoveRule("overall"))

	check = gate.Check(result, tibetanRefuge)
	assert.True(t, check.Passed)
}

func TestGateQualityScoreAttached(t *testing.T) {
	result := models.TranslationResult{
		Translation: "refuge (" + tibetanRefuge + ")",
		Confidence:  0.8,
	}

	gate := newGate().Check(result, tibetanRefuge)

	assert.Equal(t, 0.8, gate.QualityScore.Confidence)
	assert.Equal(t, 1.0, gate.QualityScore.Preservation)
}
