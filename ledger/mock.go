package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a test double for Client.
// Function fields must be set before the corresponding method is called.
type MockClient struct {
	RecordFn  func(ctx context.Context, fileID, contentID string) (string, error)
	ResolveFn func(ctx context.Context, fileID string) (string, error)
}

func (m *MockClient) Record(ctx context.Context, fileID, contentID string) (string, error) {
	return m.RecordFn(ctx, fileID, contentID)
}

func (m *MockClient) Resolve(ctx context.Context, fileID string) (string, error) {
	return m.ResolveFn(ctx, fileID)
}

// MemLedger is an in-memory ledger for tests and offline use: Record stores
// the mapping and returns a deterministic tx id, Resolve reads it back.
// Safe for concurrent use.
type MemLedger struct {
	mu      sync.Mutex
	anchors map[string]string
	txSeq   int
}

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{anchors: make(map[string]string)}
}

func (l *MemLedger) Record(_ context.Context, fileID, contentID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.anchors[fileID] = contentID
	l.txSeq++
	return txIDFor(l.txSeq), nil
}

func (l *MemLedger) Resolve(_ context.Context, fileID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	contentID, ok := l.anchors[fileID]
	if !ok {
		return "", ErrNotAnchored
	}
	return contentID, nil
}

// txIDFor renders a readable synthetic transaction id.
func txIDFor(seq int) string {
	return fmt.Sprintf("memtx-%06d", seq)
}
