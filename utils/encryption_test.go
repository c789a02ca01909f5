package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenEncryption(t *testing.T) {
	// Configuration is parsed once per process, so the key must be in place
	// before the first EncryptToken call in this binary.
	t.Setenv("TOKEN_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	t.Run("round trip", func(t *testing.T) {
		plaintext := "EAABsbCS1iHgBO7Zb..."

		encrypted, err := EncryptToken(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := DecryptToken(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("unique nonce per encryption", func(t *testing.T) {
		a, err := EncryptToken("same token")
		require.NoError(t, err)
		b, err := EncryptToken("same token")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		_, err := DecryptToken("bm90IGEgcmVhbCBjaXBoZXJ0ZXh0")
		assert.Error(t, err)
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, err := DecryptToken("not base64 at all!!!")
		assert.Error(t, err)
	})

	t.Run("truncated ciphertext fails", func(t *testing.T) {
		_, err := DecryptToken("YWJj")
		assert.ErrorIs(t, err, errCiphertextTooShort)
	})
}
