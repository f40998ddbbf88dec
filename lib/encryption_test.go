package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "Hamid Haya, +31 6 12345678"

	ciphertext, err := Encrypt(plaintext, testKey)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Decrypt(ciphertext, testKey)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptEmptyString(t *testing.T) {
	ciphertext, err := Encrypt("", testKey)
	require.NoError(t, err)
	assert.Empty(t, ciphertext)
}

func TestEncryptRejectsShortKey(t *testing.T) {
	_, err := Encrypt("data", "too-short")
	assert.Error(t, err)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	ciphertext, err := Encrypt("secret address", testKey)
	require.NoError(t, err)

	otherKey := "ffffffffffffffffffffffffffffffff"
	_, err = Decrypt(ciphertext, otherKey)
	assert.Error(t, err)
}

func TestEncryptNonDeterministic(t *testing.T) {
	// A fresh nonce per call means equal plaintexts never share ciphertext.
	a, err := Encrypt("same input", testKey)
	require.NoError(t, err)
	b, err := Encrypt("same input", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
