package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ErrorKind is the failure taxonomy exposed to callers and the UI
type ErrorKind string

const (
	KindRateLimit ErrorKind = "rate_limit"
	KindAuth      ErrorKind = "auth"
	KindNetwork   ErrorKind = "network"
	KindTimeout   ErrorKind = "timeout"
	KindServer    ErrorKind = "server"
	KindUnknown   ErrorKind = "unknown"
)

// defaultRetryAfterSeconds is used for rate limits when the provider sends no
// Retry-After header.
const defaultRetryAfterSeconds = 60

// APIError is a classified API failure. It is created once per failed call and
// not modified afterwards.
type APIError struct {
	Kind              ErrorKind `json:"kind"`
	Message           string    `json:"message"`
	RetryAfterSeconds int       `json:"retry_after_seconds,omitempty"`
	CanRetry          bool      `json:"can_retry"`
	StatusCode        int       `json:"status_code,omitempty"`
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// bodyPattern matches a provider-specific phrase in an error response body.
// Provider quirks are isolated here: supporting another vendor's wording is a
// new table entry, nothing else changes.
type bodyPattern struct {
	substring         string
	kind              ErrorKind
	message           string
	canRetry          bool
	retryAfterDefault int
}

var bodyPatterns = []bodyPattern{
	{
		substring:         "call frequency",
		kind:              KindRateLimit,
		message:           "API call frequency limit reached",
		canRetry:          true,
		retryAfterDefault: defaultRetryAfterSeconds,
	},
	{
		substring: "premium endpoint",
		kind:      KindAuth,
		message:   "endpoint requires a premium API subscription",
	},
	{
		substring: "Invalid API call",
		kind:      KindAuth,
		message:   "invalid API call, check the endpoint URL and API key",
	},
}

// Classify converts any transport failure into an *APIError. It is a pure
// decision table: first match wins, it never panics and classifies every
// input. An already-classified error passes through unchanged.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode != 0 {
			return classifyResponse(reqErr)
		}
		return classifyTransport(reqErr.Err)
	}

	return classifyTransport(err)
}

// classifyResponse handles failures where an HTTP response was received.
func classifyResponse(reqErr *RequestError) *APIError {
	body := string(reqErr.Body)

	for _, p := range bodyPatterns {
		if strings.Contains(body, p.substring) {
			e := &APIError{
				Kind:       p.kind,
				Message:    p.message,
				CanRetry:   p.canRetry,
				StatusCode: reqErr.StatusCode,
			}
			if p.kind == KindRateLimit {
				e.RetryAfterSeconds = retryAfterSeconds(reqErr.Headers, p.retryAfterDefault)
			}
			return e
		}
	}

	switch {
	case reqErr.StatusCode == http.StatusTooManyRequests:
		return &APIError{
			Kind:              KindRateLimit,
			Message:           "rate limit exceeded",
			RetryAfterSeconds: retryAfterSeconds(reqErr.Headers, defaultRetryAfterSeconds),
			CanRetry:          true,
			StatusCode:        reqErr.StatusCode,
		}
	case reqErr.StatusCode == http.StatusUnauthorized || reqErr.StatusCode == http.StatusForbidden:
		return &APIError{
			Kind:       KindAuth,
			Message:    "authentication failed, check the configured API key",
			CanRetry:   false,
			StatusCode: reqErr.StatusCode,
		}
	case reqErr.StatusCode == http.StatusInternalServerError ||
		reqErr.StatusCode == http.StatusBadGateway ||
		reqErr.StatusCode == http.StatusServiceUnavailable ||
		reqErr.StatusCode == http.StatusGatewayTimeout:
		return &APIError{
			Kind:       KindServer,
			Message:    fmt.Sprintf("server error (status %d)", reqErr.StatusCode),
			CanRetry:   true,
			StatusCode: reqErr.StatusCode,
		}
	default:
		return &APIError{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("unexpected status %d", reqErr.StatusCode),
			CanRetry:   reqErr.StatusCode >= 500,
			StatusCode: reqErr.StatusCode,
		}
	}
}

// classifyTransport handles failures where no HTTP response was received.
func classifyTransport(err error) *APIError {
	if err == nil {
		return &APIError{
			Kind:     KindUnknown,
			Message:  "request failed with no response",
			CanRetry: false,
		}
	}

	if isTimeout(err) {
		return &APIError{
			Kind:     KindTimeout,
			Message:  "request timed out",
			CanRetry: true,
		}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, net.ErrClosed) {
		return &APIError{
			Kind:     KindNetwork,
			Message:  "network error, could not reach the endpoint",
			CanRetry: true,
		}
	}

	return &APIError{
		Kind:     KindUnknown,
		Message:  err.Error(),
		CanRetry: false,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryAfterSeconds parses the Retry-After header, falling back to the
// provider default when it is missing or malformed.
func retryAfterSeconds(headers http.Header, fallback int) int {
	if headers == nil {
		return fallback
	}
	raw := headers.Get("Retry-After")
	if raw == "" {
		return fallback
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs < 0 {
		return fallback
	}
	return secs
}
