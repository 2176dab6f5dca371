package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client represents a client to communicate with an upstream HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Response is an upstream answer with its body fully read.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// OK reports a 200 answer. The upstream APIs only count 200 as success.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Text is the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// NewBackendClient creates a new Client for baseURL. Each call should carry
// its own deadline on the context; timeout is a backstop for calls that
// don't.
func NewBackendClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL is the address paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Forward sends a request to baseURL+path and reads the whole answer. Any
// error means the service could not be reached or stopped answering; a
// non-200 status is returned as a Response.
func (c *Client) Forward(ctx context.Context, method, path string, headers http.Header, body io.Reader) (*Response, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
