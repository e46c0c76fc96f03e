package models

import (
	"encoding/json"
	"testing"

	"lotsawa/internal/encryption"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRequestEnvelopeRoundTrip(t *testing.T) {
	svc, err := encryption.NewService("")
	require.NoError(t, err)

	req := TranslationRequest{
		SourceText: "བཀྲ་ཤིས་བདེ་ལེགས།",
		Config: TranslationConfig{
			TargetLanguage: "en",
			BaseConfidence: 0.6,
		},
	}

	data, err := EncodeRequest(req, svc)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), data[0], "unencrypted envelope stays a JSON object")

	decoded, err := DecodeRequest(data, svc)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestRequestEnvelopeEncrypted(t *testing.T) {
	svc, err := encryption.NewService("envelope-test-key")
	require.NoError(t, err)

	req := TranslationRequest{SourceText: "ཆོས།"}

	data, err := EncodeRequest(req, svc)
	require.NoError(t, err)
	assert.Equal(t, byte('"'), data[0], "encrypted envelope is a JSON string literal")
	assert.NotContains(t, string(data), "ཆོས")

	decoded, err := DecodeRequest(data, svc)
	require.NoError(t, err)
	assert.Equal(t, req.SourceText, decoded.SourceText)
}

func TestDecodeRequestUnknownVersion(t *testing.T) {
	svc, err := encryption.NewService("")
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]any{"version": 99, "request": map[string]any{}})
	require.NoError(t, err)

	_, err = DecodeRequest(datatypes.JSON(raw), svc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestResultEnvelopeRoundTrip(t *testing.T) {
	svc, err := encryption.NewService("")
	require.NoError(t, err)

	env := ResultEnvelope{
		Result: TranslationResult{
			Translation:      "I take refuge in the Buddha (སངས་རྒྱས།)",
			Confidence:       0.91,
			ProcessingTimeMs: 1200,
		},
		Consensus: &ConsensusMetadata{
			Consensus:      true,
			ModelsUsed:     []string{"openai", "google"},
			ModelAgreement: 0.97,
		},
		Quality: &QualityScore{Overall: 0.9, Confidence: 0.91, Format: 1.0, Preservation: 0.85},
		Gate:    &GateResult{Passed: true},
	}

	data, err := EncodeResult(env, svc)
	require.NoError(t, err)

	decoded, err := DecodeResult(data, svc)
	require.NoError(t, err)
	assert.Equal(t, env.Result, decoded.Result)
	require.NotNil(t, decoded.Consensus)
	assert.True(t, decoded.Consensus.Consensus)
	assert.InDelta(t, 0.97, decoded.Consensus.ModelAgreement, 1e-9)
	require.NotNil(t, decoded.Gate)
	assert.True(t, decoded.Gate.Passed)
}

func TestDecodeEmptyEnvelope(t *testing.T) {
	svc, err := encryption.NewService("")
	require.NoError(t, err)

	_, err = DecodeResult(nil, svc)
	assert.Error(t, err)
}
