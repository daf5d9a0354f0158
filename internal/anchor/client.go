package anchor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// HeaderCSRFToken carries the opaque token on both requests.
	HeaderCSRFToken = "Csrf-Token"
	// ContentTypeText is sent with the anchor body.
	ContentTypeText = "text/plain;charset=UTF-8"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 10
)

// StatusError reports a non-200 response.
type StatusError struct {
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s anchor: unexpected status %d", e.Method, e.Code)
}

// Client talks to a single anchor endpoint on behalf of one page.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to share a cookie jar
// with the page that was loaded.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   endpoint,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post writes anchor as the request body. The response body is ignored.
func (c *Client) Post(ctx context.Context, anchor string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(anchor))
	if err != nil {
		return fmt.Errorf("failed to build anchor request: %w", err)
	}
	req.Header.Set(HeaderCSRFToken, c.token)
	req.Header.Set("Content-Type", ContentTypeText)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("anchor request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: http.MethodPost, Code: resp.StatusCode}
	}
	return nil
}

// Get returns the body of a 200 response, which may be empty.
func (c *Client) Get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build anchor request: %w", err)
	}
	req.Header.Set(HeaderCSRFToken, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anchor request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Method: http.MethodGet, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read anchor response: %w", err)
	}
	return string(body), nil
}
