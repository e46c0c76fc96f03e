// Package encryption provides at-rest encryption for persisted job payloads.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Service encrypts and decrypts payload strings and fingerprints content.
type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	// Hash returns a deterministic keyed fingerprint of the input, used for
	// dedup lookups without storing plaintext.
	Hash(data string) string
	// Enabled reports whether payloads are actually encrypted.
	Enabled() bool
}

// pbkdf2 parameters for key derivation from the configured passphrase.
const (
	keyIterations = 120000
	keyLength     = 32
)

// keySalt is a fixed application salt. The passphrase is the secret; the
// salt only separates this deployment's key space from generic rainbow
// tables for the same passphrase.
var keySalt = []byte("lotsawa-payload-encryption-v1")

// NewService creates an AES-256-GCM service when key is non-empty, otherwise
// a pass-through noop service.
func NewService(key string) (Service, error) {
	if key == "" {
		return &noopService{}, nil
	}

	derived := pbkdf2.Key([]byte(key), keySalt, keyIterations, keyLength, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &aesService{gcm: gcm, hmacKey: derived}, nil
}

// aesService implements Service with AES-256-GCM and a random nonce per
// encryption. Ciphertext wire form is hex(nonce || sealed).
type aesService struct {
	gcm     cipher.AEAD
	hmacKey []byte
}

func (s *aesService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func (s *aesService) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	nonceSize := s.gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := s.gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

func (s *aesService) Hash(data string) string {
	mac := hmac.New(sha256.New, s.hmacKey)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *aesService) Enabled() bool { return true }

// noopService passes data through unchanged. Used when no encryption key is
// configured.
type noopService struct{}

func (s *noopService) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (s *noopService) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

func (s *noopService) Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func (s *noopService) Enabled() bool { return false }
