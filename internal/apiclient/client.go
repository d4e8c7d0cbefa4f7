package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call so a retry loop always reaches a
// terminal success or failure.
const DefaultTimeout = 15 * time.Second

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// RequestError carries everything the failure classifier needs: the HTTP
// status, body and headers when a response was received, or the underlying
// transport error when none was.
type RequestError struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return "request failed"
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client performs GET requests against widget-configured endpoints
type Client struct {
	HTTPClient *http.Client
}

// NewClient creates a new API client with a bounded timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request with the given static headers. A 2xx response is
// returned as *Response; anything else — non-2xx status, connection failure,
// timeout — is returned as a *RequestError.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Body:       body,
			Headers:    resp.Header,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}
