package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// rpcNotFoundCode is the error code ledger nodes return when no anchoring
// entry exists for the requested file id.
const rpcNotFoundCode = -5

// RPCConfig holds connection settings for a ledger node.
type RPCConfig struct {
	URL      string
	User     string
	Password string
}

// RPCClient is a JSON-RPC 1.0 client for ledger nodes. It handles request
// serialization, authentication and response parsing; Record and Resolve
// are built on top of the Call method.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

// Compile-time interface check.
var _ Client = (*RPCClient)(nil)

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcError represents an error returned by the JSON-RPC server.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewRPCClient creates a new JSON-RPC client. Basic Auth is used when User
// is non-empty, and the transport keeps a small connection pool.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Call invokes a JSON-RPC method on the ledger node. If params is nil an
// empty params array is sent; if result is nil the response result is
// discarded. Connection problems surface as ErrConnectionFailed, undecodable
// responses as ErrInvalidResponse, and server-side errors as plain errors
// carrying the node's message (except the not-found code, which maps to
// ErrNotAnchored).
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("ledger: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Code == rpcNotFoundCode {
			return fmt.Errorf("%w: %s", ErrNotAnchored, rpcResp.Error.Message)
		}
		return fmt.Errorf("%w: rpc error %d: %s", ErrRejected, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}

// Record anchors (fileID, contentID) via the anchor_record method.
func (c *RPCClient) Record(ctx context.Context, fileID, contentID string) (string, error) {
	var txID string
	if err := c.Call(ctx, "anchor_record", []interface{}{fileID, contentID}, &txID); err != nil {
		return "", err
	}
	if txID == "" {
		return "", fmt.Errorf("%w: empty transaction id", ErrInvalidResponse)
	}
	return txID, nil
}

// Resolve returns the content identifier anchored for fileID via the
// anchor_resolve method.
func (c *RPCClient) Resolve(ctx context.Context, fileID string) (string, error) {
	var contentID string
	if err := c.Call(ctx, "anchor_resolve", []interface{}{fileID}, &contentID); err != nil {
		return "", err
	}
	if contentID == "" {
		return "", fmt.Errorf("%w: file %s", ErrNotAnchored, fileID)
	}
	return contentID, nil
}
