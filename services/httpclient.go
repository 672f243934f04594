package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"drift/ratelimit"
)

const maxErrorBody = 2048

// apiClient is the shared JSON-over-HTTP plumbing behind every provider
// and backend client.
type apiClient struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.ProviderLimiter
}

func newAPIClient(provider, baseURL string, timeout time.Duration, limiter *ratelimit.ProviderLimiter) *apiClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &apiClient{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

func (c *apiClient) configured() bool {
	return c.baseURL != ""
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if !c.configured() {
		return fmt.Errorf("%s: %w", c.provider, ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx, c.provider); err != nil {
		return &TransportError{Err: err}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.provider, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(raw),
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	return nil
}

// extractDetail pulls the "detail" field out of an error body. A non-string
// detail (validation lists) is returned as its JSON text.
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	if string(body.Detail) == "null" {
		return ""
	}
	return string(body.Detail)
}
