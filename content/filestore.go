package content

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// contentIDLen is the hex length of a content identifier (32 bytes).
const contentIDLen = 64

// FileStore implements Client on the local filesystem.
// Blobs are stored at {baseDir}/{contentID[:2]}/{contentID}; the first byte
// (2 hex chars) is used as a subdirectory for sharding.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// Compile-time interface check.
var _ Client = (*FileStore)(nil)

// NewFileStore creates a file-based content store rooted at baseDir.
// The directory is created if it does not exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// validateContentID checks that id is a 64-character hex string.
func validateContentID(id string) error {
	if len(id) != contentIDLen {
		return fmt.Errorf("%w: got %d characters", ErrInvalidContentID, len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContentID, err)
	}
	return nil
}

// blobPath returns the sharded filesystem path for a content id.
func (fs *FileStore) blobPath(id string) string {
	return filepath.Join(fs.baseDir, id[:2], id)
}

// Put stores data and returns its content identifier. Storing the same
// bytes twice is idempotent by construction.
func (fs *FileStore) Put(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	id := ContentID(data)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(fs.baseDir, id[:2]), 0700); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.WriteFile(fs.blobPath(id), data, 0600); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return id, nil
}

// Get retrieves content by identifier.
func (fs *FileStore) Get(_ context.Context, contentID string) ([]byte, error) {
	if err := validateContentID(contentID); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.blobPath(contentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return data, nil
}
