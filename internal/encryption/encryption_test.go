package encryption

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	t.Run("WithEncryptionKey", func(t *testing.T) {
		svc, err := NewService("test-encryption-key-32-bytes!!")
		require.NoError(t, err)
		assert.True(t, svc.Enabled())

		_, ok := svc.(*aesService)
		assert.True(t, ok, "Should create AES service with encryption key")
	})

	t.Run("WithoutEncryptionKey", func(t *testing.T) {
		svc, err := NewService("")
		require.NoError(t, err)
		assert.False(t, svc.Enabled())

		_, ok := svc.(*noopService)
		assert.True(t, ok, "Should create noop service without encryption key")
	})
}

func TestAESServiceEncryptDecrypt(t *testing.T) {
	svc, err := NewService("test-encryption-key-32-bytes!!")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext string
	}{
		{"EmptyString", ""},
		{"ShortString", "hello"},
		{"LongString", strings.Repeat("a", 1000)},
		{"Tibetan", "སངས་རྒྱས་ཆོས་དང་ཚོགས་ཀྱི་མཆོག་རྣམས་ལ།"},
		{"JSONPayload", `{"version":1,"request":{"sourceText":"བཀྲ་ཤིས་བདེ་ལེགས།"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := svc.Encrypt(tc.plaintext)
			require.NoError(t, err)
			assert.NotEmpty(t, ciphertext)

			_, err = hex.DecodeString(ciphertext)
			assert.NoError(t, err, "Ciphertext should be valid hex")

			if tc.plaintext != "" {
				assert.NotEqual(t, tc.plaintext, ciphertext)
			}

			decrypted, err := svc.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, decrypted)
		})
	}
}

func TestAESServiceEncryptUniqueness(t *testing.T) {
	svc, err := NewService("test-encryption-key-32-bytes!!")
	require.NoError(t, err)

	ciphertexts := make(map[string]bool)
	for range 10 {
		ciphertext, err := svc.Encrypt("test-data")
		require.NoError(t, err)
		ciphertexts[ciphertext] = true
	}

	// Random nonce means repeated encryptions never collide.
	assert.Equal(t, 10, len(ciphertexts))
}

func TestAESServiceTamperDetection(t *testing.T) {
	svc, err := NewService("test-encryption-key-32-bytes!!")
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("sensitive payload")
	require.NoError(t, err)

	raw, err := hex.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := hex.EncodeToString(raw)

	_, err = svc.Decrypt(tampered)
	assert.Error(t, err, "Tampered ciphertext must not decrypt")
}

func TestAESServiceDecryptErrors(t *testing.T) {
	svc, err := NewService("test-encryption-key-32-bytes!!")
	require.NoError(t, err)

	t.Run("NotHex", func(t *testing.T) {
		_, err := svc.Decrypt("not-hex-data!")
		assert.Error(t, err)
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := svc.Decrypt("abcd")
		assert.Error(t, err)
	})
}

func TestNoopService(t *testing.T) {
	svc, err := NewService("")
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", ciphertext)

	decrypted, err := svc.Decrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", decrypted)
}

func TestHashDeterministic(t *testing.T) {
	for _, key := range []string{"", "test-encryption-key-32-bytes!!"} {
		svc, err := NewService(key)
		require.NoError(t, err)

		first := svc.Hash("ཆོས།")
		second := svc.Hash("ཆོས།")
		assert.Equal(t, first, second)
		assert.NotEqual(t, first, svc.Hash("other"))
		assert.Len(t, first, 64)
	}
}

func TestHashKeyed(t *testing.T) {
	svcA, err := NewService("key-a")
	require.NoError(t, err)
	svcB, err := NewService("key-b")
	require.NoError(t, err)

	assert.NotEqual(t, svcA.Hash("data"), svcB.Hash("data"))
}
