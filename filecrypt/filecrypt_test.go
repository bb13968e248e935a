package filecrypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty input", []byte{}},
		{"hello world", []byte("hello world")},
		{"binary data", []byte{0x00, 0x01, 0xff, 0xfe}},
		{"large input", bytes.Repeat([]byte("a"), 1024*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Encrypt(tt.plaintext)
			require.NoError(t, err)
			assert.Len(t, res.Key, KeySize)
			assert.Len(t, res.Salt, SaltSize)
			assert.Len(t, res.Tag, TagSize)
			assert.Len(t, res.Ciphertext, len(tt.plaintext))

			plaintext, err := Decrypt(res.Ciphertext, res.Key, res.Salt, res.Tag)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestEncryptFreshMaterial(t *testing.T) {
	plaintext := []byte("same plaintext twice")

	first, err := Encrypt(plaintext)
	require.NoError(t, err)
	second, err := Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key, "keys must be fresh per file")
	assert.NotEqual(t, first.Salt, second.Salt, "salts must be fresh per file")
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	res, err := Encrypt([]byte("authenticated content"))
	require.NoError(t, err)

	// Flip one bit in each byte position of the ciphertext.
	for i := range res.Ciphertext {
		mutated := append([]byte(nil), res.Ciphertext...)
		mutated[i] ^= 0x01
		_, err := Decrypt(mutated, res.Key, res.Salt, res.Tag)
		assert.ErrorIs(t, err, ErrDecryptionFailed, "bit flip at ciphertext byte %d", i)
	}
}

func TestDecryptTamperedTag(t *testing.T) {
	res, err := Encrypt([]byte("authenticated content"))
	require.NoError(t, err)

	for i := range res.Tag {
		mutated := append([]byte(nil), res.Tag...)
		mutated[i] ^= 0x80
		_, err := Decrypt(res.Ciphertext, res.Key, res.Salt, mutated)
		assert.ErrorIs(t, err, ErrDecryptionFailed, "bit flip at tag byte %d", i)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	res, err := Encrypt([]byte("secret"))
	require.NoError(t, err)

	other, err := Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(res.Ciphertext, other.Key, res.Salt, res.Tag)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptInvalidSizes(t *testing.T) {
	res, err := Encrypt([]byte("sized"))
	require.NoError(t, err)

	_, err = Decrypt(res.Ciphertext, res.Key[:16], res.Salt, res.Tag)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = Decrypt(res.Ciphertext, res.Key, res.Salt[:8], res.Tag)
	assert.ErrorIs(t, err, ErrInvalidSaltSize)

	_, err = Decrypt(res.Ciphertext, res.Key, res.Salt, res.Tag[:4])
	assert.ErrorIs(t, err, ErrInvalidTagSize)
}

func TestDeriveKey(t *testing.T) {
	secret := []byte("server master secret")
	salt := []byte("deployment-a")

	key1, err := DeriveKey(secret, salt)
	require.NoError(t, err)
	assert.Len(t, key1, KeySize)

	key2, err := DeriveKey(secret, salt)
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "derivation must be deterministic")

	key3, err := DeriveKey(secret, []byte("deployment-b"))
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3, "different salt should produce a different key")
}

func TestDeriveKeyEmptySecret(t *testing.T) {
	_, err := DeriveKey(nil, []byte("salt"))
	assert.ErrorIs(t, err, ErrKDFFailure)
}
