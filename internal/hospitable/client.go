// Package hospitable is a minimal client for the Hospitable Connect API.
// Only the endpoints the property-sync flow needs are implemented.
package hospitable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const connectVersion = "2024-03-17"

// RateLimitError is returned when the server responds with HTTP 429.
type RateLimitError struct {
	Message        string
	ResetTimestamp time.Time // from X-RateLimit-Reset, if present
}

func (r *RateLimitError) Error() string {
	if !r.ResetTimestamp.IsZero() {
		return fmt.Sprintf("rate limit exceeded; retry after %s", r.ResetTimestamp.Format(time.RFC3339))
	}
	return fmt.Sprintf("rate limit exceeded: %s", r.Message)
}

// Client manages communication with the Hospitable Connect API. Each call
// carries the host's own access token, so one Client serves all hosts.
type Client struct {
	BaseURL      *url.URL
	HTTPClient   *http.Client
	MaxRetries   int           // how many times to retry on 429
	RetryInitial time.Duration // initial backoff
}

func NewClient(baseURL string, maxRetries int, retryInitial time.Duration) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryInitial <= 0 {
		retryInitial = 1 * time.Second
	}

	return &Client{
		BaseURL:      parsed,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		MaxRetries:   maxRetries,
		RetryInitial: retryInitial,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, reqPath, token string, query url.Values, out any) error {
	var attempt int
	var backoff = c.RetryInitial

	for {
		err := c.doOnce(ctx, method, reqPath, token, query, out)
		if err == nil {
			return nil
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if attempt < c.MaxRetries {
				attempt++
				time.Sleep(backoff)
				backoff *= 2 // simple exponential
				continue
			}
			return err
		}
		return err
	}
}

// doOnce performs a single HTTP request attempt (no retries).
func (c *Client) doOnce(ctx context.Context, method, reqPath, token string, query url.Values, out any) error {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, reqPath)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Connect-Version", connectVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleHTTPError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) handleHTTPError(resp *http.Response) error {
	status := resp.StatusCode
	bodyBytes, _ := io.ReadAll(resp.Body)

	var apiErr errorResponse
	if err := json.Unmarshal(bodyBytes, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(bodyBytes))
	}

	switch status {
	case 401:
		return fmt.Errorf("unauthorized (401): %s", apiErr.Message)
	case 403:
		return fmt.Errorf("forbidden (403): %s", apiErr.Message)
	case 404:
		return fmt.Errorf("not found (404): %s", apiErr.Message)
	case 429:
		resetStr := resp.Header.Get("X-RateLimit-Reset")
		var resetTime time.Time
		if resetStr != "" {
			if sec, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
				resetTime = time.Unix(sec, 0)
			}
		}
		return &RateLimitError{Message: apiErr.Message, ResetTimestamp: resetTime}
	default:
		return fmt.Errorf("http error (%d): %s", status, apiErr.Message)
	}
}
