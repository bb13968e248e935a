package metadata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/chaindrive/libchaindrive-go/filecrypt"
)

// wrapSalt namespaces the HKDF derivation of the at-rest wrapping key.
const wrapSalt = "chaindrive-at-rest-v1"

// MaterialCipher seals and opens per-file encryption material under a
// server-wide key derived from the configured master secret. The sealed
// format is nonce || ciphertext || tag (standard GCM 12-byte nonce).
type MaterialCipher struct {
	gcm cipher.AEAD
}

// NewMaterialCipher derives the wrapping key from the master secret and
// builds the AEAD used for sealing.
func NewMaterialCipher(secret []byte) (*MaterialCipher, error) {
	key, err := filecrypt.DeriveKey(secret, []byte(wrapSalt))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("metadata: wrap cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("metadata: wrap GCM creation failed: %w", err)
	}
	return &MaterialCipher{gcm: gcm}, nil
}

// Seal encrypts one piece of material for persistence.
func (c *MaterialCipher) Seal(material []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("metadata: wrap nonce generation failed: %w", err)
	}
	return c.gcm.Seal(nonce, nonce, material, nil), nil
}

// Open decrypts a sealed piece of material.
func (c *MaterialCipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < c.gcm.NonceSize() {
		return nil, ErrMaterialUnwrap
	}
	nonce, ct := sealed[:c.gcm.NonceSize()], sealed[c.gcm.NonceSize():]
	material, err := c.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrMaterialUnwrap
	}
	return material, nil
}

// sealRecord replaces the record's material fields with sealed copies.
// Folder records carry no material and pass through untouched.
func sealRecord(c *MaterialCipher, rec *FileRecord) (*FileRecord, error) {
	if rec.IsFolder {
		return rec, nil
	}
	sealed := *rec
	var err error
	if sealed.EncryptionKey, err = c.Seal(rec.EncryptionKey); err != nil {
		return nil, err
	}
	if sealed.EncryptionSalt, err = c.Seal(rec.EncryptionSalt); err != nil {
		return nil, err
	}
	if sealed.EncryptionTag, err = c.Seal(rec.EncryptionTag); err != nil {
		return nil, err
	}
	return &sealed, nil
}

// openRecord replaces the record's sealed material fields with the clear
// values, returning a copy.
func openRecord(c *MaterialCipher, rec *FileRecord) (*FileRecord, error) {
	if rec.IsFolder {
		return rec, nil
	}
	opened := *rec
	var err error
	if opened.EncryptionKey, err = c.Open(rec.EncryptionKey); err != nil {
		return nil, err
	}
	if opened.EncryptionSalt, err = c.Open(rec.EncryptionSalt); err != nil {
		return nil, err
	}
	if opened.EncryptionTag, err = c.Open(rec.EncryptionTag); err != nil {
		return nil, err
	}
	return &opened, nil
}
