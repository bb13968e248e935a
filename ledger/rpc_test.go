package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClientRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "testpass", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "anchor_record", req.Method)
		require.Len(t, req.Params, 2)
		assert.Equal(t, "file-1", req.Params[0])
		assert.Equal(t, "cid-1", req.Params[1])

		_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`"tx-abc"`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "testuser", Password: "testpass"})
	txID, err := client.Record(context.Background(), "file-1", "cid-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-abc", txID)
}

func TestRPCClientResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "anchor_resolve", req.Method)
		_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`"cid-9"`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	contentID, err := client.Resolve(context.Background(), "file-9")
	require.NoError(t, err)
	assert.Equal(t, "cid-9", contentID)
}

func TestRPCClientNotAnchored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: rpcNotFoundCode, Message: "no anchor for id"},
		})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	_, err := client.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotAnchored)
}

func TestRPCClientRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -26, Message: "anchor rejected"},
		})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	_, err := client.Record(context.Background(), "f", "c")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "anchor rejected")
}

func TestRPCClientConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://localhost:1"})
	_, err := client.Record(context.Background(), "f", "c")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientIDMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rpcResponse{ID: 999, Result: json.RawMessage(`"tx"`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	_, err := client.Record(context.Background(), "f", "c")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestMemLedger(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	txID, err := l.Record(ctx, "file-1", "cid-1")
	require.NoError(t, err)
	assert.Equal(t, "memtx-000001", txID)

	contentID, err := l.Resolve(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, "cid-1", contentID)

	_, err = l.Resolve(ctx, "file-2")
	assert.ErrorIs(t, err, ErrNotAnchored)
}

func TestMemLedgerConcurrent(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	// An offline node anchors every upload here, so parallel requests
	// must not trip the race detector or lose anchors.
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fileID := fmt.Sprintf("file-%d", n)
			_, err := l.Record(ctx, fileID, fmt.Sprintf("cid-%d", n))
			assert.NoError(t, err)
			_, _ = l.Resolve(ctx, fileID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		contentID, err := l.Resolve(ctx, fmt.Sprintf("file-%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("cid-%d", i), contentID)
	}
}
