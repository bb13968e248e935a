package content

import "context"

// MockClient is a test double for Client.
// Function fields must be set before the corresponding method is called.
type MockClient struct {
	PutFn func(ctx context.Context, data []byte) (string, error)
	GetFn func(ctx context.Context, contentID string) ([]byte, error)
}

func (m *MockClient) Put(ctx context.Context, data []byte) (string, error) {
	return m.PutFn(ctx, data)
}

func (m *MockClient) Get(ctx context.Context, contentID string) ([]byte, error) {
	return m.GetFn(ctx, contentID)
}
