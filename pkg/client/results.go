// Package client provides HTTP clients for the fdynamics services.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/HatiCode/fdynamics/pkg/storage"
)

// StaleHeader is set by the extractor on results older than its stale
// threshold.
const StaleHeader = "X-Fdynamics-Stale"

// ErrNotFound is returned when the extractor has no result for a source.
var ErrNotFound = errors.New("result not found")

// ResultClient fetches feature dynamics results from the extractor service.
// It is safe for concurrent use.
type ResultClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewResultClient creates a client for the extractor at baseURL, for
// example "http://localhost:8081". Requests time out after 5 seconds.
func NewResultClient(baseURL string) *ResultClient {
	return NewResultClientWithTimeout(baseURL, 5*time.Second)
}

// NewResultClientWithTimeout creates a client with a custom request timeout.
func NewResultClientWithTimeout(baseURL string, timeout time.Duration) *ResultClient {
	return &ResultClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LatestResult is a fetched result and whether the extractor marked it stale.
type LatestResult struct {
	Result storage.Result
	Stale  bool
}

// GetLatest fetches the latest result for source.
func (c *ResultClient) GetLatest(ctx context.Context, source string) (*LatestResult, error) {
	if source == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath("/features/current")
	query := u.Query()
	query.Set("source", source)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w for source %q", ErrNotFound, source)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result storage.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &LatestResult{
		Result: result,
		Stale:  resp.Header.Get(StaleHeader) == "true",
	}, nil
}

// IsStale reports whether result is older than staleAfter.
func IsStale(result storage.Result, staleAfter time.Duration) bool {
	return time.Since(result.GeneratedAt) > staleAfter
}
