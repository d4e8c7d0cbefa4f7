package service

import (
	"context"
	"encoding/json"
	"time"

	"widget-dashboard-backend/internal/apiclient"
	apperrors "widget-dashboard-backend/internal/errors"
	"widget-dashboard-backend/internal/fields"
	"widget-dashboard-backend/internal/logger"

	"github.com/google/uuid"
)

// FetchOptions controls caching and retry behavior for one data fetch
type FetchOptions struct {
	// TTL for the stored payload; <= 0 means the cache default
	TTL time.Duration
	// SkipCache bypasses the response cache entirely: no lookup, no store
	SkipCache bool
	// WithRetry routes the call through the retry executor
	WithRetry bool
}

// TestEndpointResult is the outcome of a one-shot endpoint probe
type TestEndpointResult struct {
	Success        bool                     `json:"success"`
	Data           interface{}              `json:"data,omitempty"`
	Fields         []fields.FieldDescriptor `json:"fields,omitempty"`
	Error          string                   `json:"error,omitempty"`
	APIError       *apiclient.APIError      `json:"api_error,omitempty"`
	ResponseTimeMs int64                    `json:"response_time_ms"`
}

// FetchWidgetData returns the JSON payload for the request, serving from the
// response cache when possible. On a miss the transport is called (through
// the retry executor when opts.WithRetry), and the body is stored with
// opts.TTL before being returned. Errors are always classified *APIError
// values except for non-JSON bodies, which surface ErrInvalidJSONResponse.
func (s *WidgetService) FetchWidgetData(ctx context.Context, url string, headers map[string]string, opts FetchOptions) (json.RawMessage, error) {
	if !opts.SkipCache {
		if data, ok := s.responseCache.Get(url, headers); ok {
			logger.New().WithField("url", url).Debug("Response cache hit")
			return data, nil
		}
	}

	resp, err := s.call(ctx, url, headers, opts.WithRetry)
	if err != nil {
		return nil, err
	}

	if !json.Valid(resp.Body) {
		return nil, apperrors.ErrInvalidJSONResponse
	}
	payload := json.RawMessage(resp.Body)

	if !opts.SkipCache {
		s.responseCache.Set(url, headers, payload, opts.TTL)
	}

	return payload, nil
}

// FetchForWidget fetches data for a stored widget using its configured URL,
// headers and TTL. refresh forces a cache bypass; the fresh payload is still
// stored so subsequent reads hit the cache.
func (s *WidgetService) FetchForWidget(ctx context.Context, id uuid.UUID, refresh bool) (json.RawMessage, error) {
	widget, err := s.getWidgetModel(id)
	if err != nil {
		return nil, err
	}

	headers := widget.Headers()
	ttl := time.Duration(widget.CacheTTLSeconds) * time.Second

	if refresh {
		payload, err := s.FetchWidgetData(ctx, widget.APIURL, headers, FetchOptions{
			TTL:       ttl,
			SkipCache: true,
			WithRetry: true,
		})
		if err != nil {
			return nil, err
		}
		s.responseCache.Set(widget.APIURL, headers, payload, ttl)
		return payload, nil
	}

	return s.FetchWidgetData(ctx, widget.APIURL, headers, FetchOptions{
		TTL:       ttl,
		WithRetry: true,
	})
}

// TestEndpoint performs a single cache-bypassing probe of an endpoint and
// infers its displayable fields. It never returns an error; failures are
// reported inside the result so the configuration UI can render them.
func (s *WidgetService) TestEndpoint(ctx context.Context, url string, headers map[string]string, withRetry bool) *TestEndpointResult {
	start := time.Now()

	resp, err := s.call(ctx, url, headers, withRetry)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		apiErr := apiclient.Classify(err)
		logger.New().WithField("url", url).WithError(apiErr).Debug("Endpoint test failed")
		return &TestEndpointResult{
			Success:        false,
			Error:          apiErr.Message,
			APIError:       apiErr,
			ResponseTimeMs: elapsed,
		}
	}

	var data interface{}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return &TestEndpointResult{
			Success:        false,
			Error:          apperrors.ErrInvalidJSONResponse.Error(),
			ResponseTimeMs: elapsed,
		}
	}

	return &TestEndpointResult{
		Success:        true,
		Data:           data,
		Fields:         fields.InferFields(data, fields.DefaultMaxDepth),
		ResponseTimeMs: elapsed,
	}
}

// call performs the transport GET, classified and retried per withRetry.
// The returned error is always a classified *APIError.
func (s *WidgetService) call(ctx context.Context, url string, headers map[string]string, withRetry bool) (*apiclient.Response, error) {
	if withRetry {
		return s.executor.Do(ctx, func(ctx context.Context) (*apiclient.Response, error) {
			return s.client.Get(ctx, url, headers)
		})
	}

	resp, err := s.client.Get(ctx, url, headers)
	if err != nil {
		return nil, apiclient.Classify(err)
	}
	return resp, nil
}
