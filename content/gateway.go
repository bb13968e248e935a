package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxResponseSize is the maximum allowed response body size for content
// fetches (1 GB). This prevents memory exhaustion from malicious gateways.
const MaxResponseSize = 1 << 30

// GatewayConfig holds connection settings for a remote content gateway.
type GatewayConfig struct {
	BaseURL   string // e.g. "https://gateway.example.com"
	APIKey    string // basic-auth user; empty disables auth
	APISecret string // basic-auth password
}

// GatewayClient implements Client against a remote content gateway:
//
//	POST {base}/api/v0/content          body: raw bytes -> {"content_id": "..."}
//	GET  {base}/api/v0/content/{id}     -> raw bytes
//
// The gateway is trusted to address content by the canonical double-SHA256
// id; Get verifies the hash before returning data.
type GatewayClient struct {
	cfg    GatewayConfig
	client *http.Client
}

// Compile-time interface check.
var _ Client = (*GatewayClient)(nil)

// NewGatewayClient creates a gateway client with a pooled HTTP transport.
func NewGatewayClient(cfg GatewayConfig) *GatewayClient {
	return &GatewayClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Put uploads data to the gateway and returns the content identifier it
// assigned.
func (c *GatewayClient) Put(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/v0/content", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("content: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.cfg.APIKey != "" {
		req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGatewayFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrGatewayFailure, resp.StatusCode, string(body))
	}

	var out struct {
		ContentID string `json:"content_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrGatewayFailure, err)
	}
	if err := validateContentID(out.ContentID); err != nil {
		return "", err
	}
	return out.ContentID, nil
}

// Get fetches content by identifier and verifies its hash before trusting
// the gateway's answer.
func (c *GatewayClient) Get(ctx context.Context, contentID string) ([]byte, error) {
	if err := validateContentID(contentID); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/api/v0/content/"+contentID, nil)
	if err != nil {
		return nil, fmt.Errorf("content: create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatewayFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayFailure, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrGatewayFailure, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	if ContentID(data) != contentID {
		return nil, ErrHashMismatch
	}
	return data, nil
}
