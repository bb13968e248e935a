package filecrypt

import "errors"

var (
	// ErrDecryptionFailed indicates AES-GCM authentication failed during
	// decryption. The ciphertext, tag, key or salt do not belong together.
	ErrDecryptionFailed = errors.New("filecrypt: decryption failed")

	// ErrInvalidKeySize indicates the key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("filecrypt: key must be 32 bytes")

	// ErrInvalidSaltSize indicates the salt is not exactly 16 bytes.
	ErrInvalidSaltSize = errors.New("filecrypt: salt must be 16 bytes")

	// ErrInvalidTagSize indicates the tag is not exactly 16 bytes.
	ErrInvalidTagSize = errors.New("filecrypt: tag must be 16 bytes")

	// ErrKDFFailure indicates HKDF key derivation failed.
	ErrKDFFailure = errors.New("filecrypt: HKDF key derivation failed")
)
