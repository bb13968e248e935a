// Package filecrypt implements the per-file authenticated encryption engine.
//
// Every file is encrypted with AES-256-GCM under a fresh random 32-byte key
// and 16-byte nonce (stored as "salt" alongside the record). The 16-byte GCM
// authentication tag is kept detached from the ciphertext so the metadata
// store can persist all three pieces of material together, sealed at rest.
package filecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	// KeySize is the length of the AES-256 key in bytes.
	KeySize = 32

	// SaltSize is the length of the GCM nonce in bytes.
	SaltSize = 16

	// TagSize is the length of the GCM authentication tag in bytes.
	TagSize = 16
)

// Result holds the output of an encryption operation.
type Result struct {
	// Ciphertext is the AES-256-GCM ciphertext without nonce or tag.
	Ciphertext []byte

	// Key is the fresh random AES-256 key, 32 bytes. Never reused across files.
	Key []byte

	// Salt is the fresh random GCM nonce, 16 bytes.
	Salt []byte

	// Tag is the detached GCM authentication tag, 16 bytes.
	Tag []byte
}

// Encrypt encrypts plaintext with AES-256-GCM under a fresh random key and
// nonce. Key and salt come from crypto/rand on every call, so repeated
// encryptions of the same plaintext never share material.
func Encrypt(plaintext []byte) (*Result, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("filecrypt: random key generation failed: %w", err)
	}
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("filecrypt: random salt generation failed: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag to the ciphertext; split it off so the tag can be
	// stored as its own column.
	sealed := gcm.Seal(nil, salt, plaintext, nil)
	split := len(sealed) - TagSize

	return &Result{
		Ciphertext: sealed[:split],
		Key:        key,
		Salt:       salt,
		Tag:        sealed[split:],
	}, nil
}

// Decrypt reverses Encrypt. It succeeds only when ciphertext, key, salt and
// tag are exactly the values produced together; any bit-level mutation of the
// ciphertext or tag fails authentication and returns ErrDecryptionFailed
// without releasing plaintext.
func Decrypt(ciphertext, key, salt, tag []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSaltSize, len(salt))
	}
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidTagSize, len(tag))
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, salt, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// newGCM builds an AES-256-GCM AEAD with a 16-byte nonce size.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("filecrypt: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, SaltSize)
	if err != nil {
		return nil, fmt.Errorf("filecrypt: GCM creation failed: %w", err)
	}
	return gcm, nil
}
