// Package dialogbrain implements the BackendClient port against the
// DialogBrain account-linking API.
package dialogbrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BackendClient = (*Client)(nil)

// Client implements the driven.BackendClient port. One sync trigger maps to
// exactly one HTTP attempt: there is no retry, no caching, and no timeout
// beyond the client's transport default.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// syncResponse is the backend's reply to a connect or refresh call.
type syncResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// Connect creates a new backend-linked account for the platform.
func (c *Client) Connect(ctx context.Context, platform model.Platform, token string, bundle model.CredentialBundle) (*model.SyncResult, error) {
	endpoint := fmt.Sprintf("%s/api/channels/%s/accounts/connect/cookie", c.baseURL, platform)
	return c.post(ctx, endpoint, token, bundle)
}

// Refresh updates the existing link identified by accountID.
func (c *Client) Refresh(ctx context.Context, platform model.Platform, accountID, token string, bundle model.CredentialBundle) (*model.SyncResult, error) {
	endpoint := fmt.Sprintf("%s/api/channels/%s/accounts/%s/sync-cookie", c.baseURL, platform, url.PathEscape(accountID))
	return c.post(ctx, endpoint, token, bundle)
}

// post sends the CredentialBundle as a flat JSON object: every captured
// cookie keyed by name, plus userAgent. The bundle lives only for the
// duration of this call and is never logged.
func (c *Client) post(ctx context.Context, endpoint, token string, bundle model.CredentialBundle) (*model.SyncResult, error) {
	payload := make(map[string]string, len(bundle.Cookies)+1)
	for name, value := range bundle.Cookies {
		payload[name] = value
	}
	payload["userAgent"] = bundle.UserAgent

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send sync request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never surfaced.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &driven.StatusError{Code: resp.StatusCode}
	}

	var sr syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	if sr.Status == "" {
		sr.Status = "connected"
	}

	return &model.SyncResult{AccountID: sr.AccountID, Status: sr.Status}, nil
}
