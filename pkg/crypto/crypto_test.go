package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return hex.EncodeToString(make([]byte, 32))
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor(testKey())
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("gsk_test_api_key_12345")
	require.NoError(t, err)
	assert.NotEqual(t, "gsk_test_api_key_12345", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "gsk_test_api_key_12345", plaintext)
}

func TestNewEncryptor_RejectsBadKeys(t *testing.T) {
	_, err := NewEncryptor("not-hex")
	assert.Error(t, err)

	_, err = NewEncryptor(hex.EncodeToString(make([]byte, 16)))
	assert.Error(t, err)
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	enc1, err := NewEncryptor(testKey())
	require.NoError(t, err)

	otherKey := make([]byte, 32)
	otherKey[0] = 1
	enc2, err := NewEncryptor(hex.EncodeToString(otherKey))
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt("secret")
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecrypt_GarbageFails(t *testing.T) {
	enc, err := NewEncryptor(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = enc.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
