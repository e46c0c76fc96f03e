package models

import (
	"encoding/json"
	"fmt"

	"lotsawa/internal/encryption"

	"gorm.io/datatypes"
)

// EnvelopeVersion is the current serialization version written for job
// request and result columns. Decoding rejects unknown versions so schema
// drift fails loudly instead of producing half-parsed payloads.
const EnvelopeVersion = 1

// RequestEnvelope is the versioned wire form of a job's request column.
type RequestEnvelope struct {
	Version int                `json:"version"`
	Request TranslationRequest `json:"request"`
}

// ResultEnvelope is the versioned wire form of a job's result column.
type ResultEnvelope struct {
	Version   int                `json:"version"`
	Result    TranslationResult  `json:"result"`
	Consensus *ConsensusMetadata `json:"consensus,omitempty"`
	Quality   *QualityScore      `json:"quality,omitempty"`
	Gate      *GateResult        `json:"gate,omitempty"`
}

// EncodeRequest serializes a request into its envelope, encrypting the
// payload when the encryption service is enabled. Encrypted payloads are
// stored as a JSON string literal so the column stays valid JSON on every
// backend.
func EncodeRequest(req TranslationRequest, svc encryption.Service) (datatypes.JSON, error) {
	return encodeEnvelope(RequestEnvelope{Version: EnvelopeVersion, Request: req}, svc)
}

// DecodeRequest deserializes a request column, decrypting when needed.
// Unknown envelope versions are a permanent error.
func DecodeRequest(data datatypes.JSON, svc encryption.Service) (TranslationRequest, error) {
	var env RequestEnvelope
	if err := decodeEnvelope(data, svc, &env); err != nil {
		return TranslationRequest{}, err
	}
	if env.Version != EnvelopeVersion {
		return TranslationRequest{}, fmt.Errorf("unsupported request envelope version %d", env.Version)
	}
	return env.Request, nil
}

// EncodeResult serializes a result envelope, encrypting when enabled.
func EncodeResult(env ResultEnvelope, svc encryption.Service) (datatypes.JSON, error) {
	env.Version = EnvelopeVersion
	return encodeEnvelope(env, svc)
}

// DecodeResult deserializes a result column, decrypting when needed.
func DecodeResult(data datatypes.JSON, svc encryption.Service) (ResultEnvelope, error) {
	var env ResultEnvelope
	if err := decodeEnvelope(data, svc, &env); err != nil {
		return ResultEnvelope{}, err
	}
	if env.Version != EnvelopeVersion {
		return ResultEnvelope{}, fmt.Errorf("unsupported result envelope version %d", env.Version)
	}
	return env, nil
}

func encodeEnvelope(env any, svc encryption.Service) (datatypes.JSON, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if svc == nil || !svc.Enabled() {
		return datatypes.JSON(raw), nil
	}

	ciphertext, err := svc.Encrypt(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt envelope: %w", err)
	}
	quoted, err := json.Marshal(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to quote ciphertext: %w", err)
	}
	return datatypes.JSON(quoted), nil
}

func decodeEnvelope(data datatypes.JSON, svc encryption.Service, out any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty envelope")
	}

	raw := []byte(data)
	// An encrypted column holds a JSON string literal instead of an object.
	if raw[0] == '"' {
		var ciphertext string
		if err := json.Unmarshal(raw, &ciphertext); err != nil {
			return fmt.Errorf("failed to unquote ciphertext: %w", err)
		}
		if svc == nil {
			return fmt.Errorf("encrypted envelope but no encryption service configured")
		}
		plaintext, err := svc.Decrypt(ciphertext)
		if err != nil {
			return fmt.Errorf("failed to decrypt envelope: %w", err)
		}
		raw = []byte(plaintext)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return nil
}
