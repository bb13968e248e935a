package filecrypt

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KDFInfo is the constant info string used in HKDF-SHA256 key derivation
// for the at-rest material wrapping key.
const KDFInfo = "chaindrive-material-wrap"

// DeriveKey derives a 32-byte AES-256 key from a server-held secret using
// HKDF-SHA256. The derivation is deterministic: the same (secret, salt) pair
// always produces the same key, so the metadata store can unwrap material it
// sealed in an earlier process lifetime.
//
// Parameters:
//   - secret: the configured server-wide master secret
//   - salt: a fixed, non-secret namespace value (per-deployment)
func DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret is empty", ErrKDFFailure)
	}

	r := hkdf.New(sha256.New, secret, salt, []byte(KDFInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKDFFailure, err)
	}
	return key, nil
}
