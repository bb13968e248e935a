// Package content provides access to the content-addressed store holding
// encrypted file payloads. The pipelines only see the Client contract:
// opaque bytes in, content identifier out, and back. FileStore is a local
// filesystem backend for single-node and test use; GatewayClient talks to a
// remote content gateway over HTTP.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Client is the narrow contract the pipelines consume.
type Client interface {
	// Put stores ciphertext and returns its content identifier.
	Put(ctx context.Context, data []byte) (string, error)

	// Get retrieves ciphertext by content identifier.
	Get(ctx context.Context, contentID string) ([]byte, error)
}

// ContentID computes the canonical content identifier for a blob:
// hex(SHA256(SHA256(data))), 64 characters.
func ContentID(data []byte) string {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return hex.EncodeToString(second[:])
}
