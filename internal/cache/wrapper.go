package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"widget-dashboard-backend/internal/logger"
)

// CacheWrapper provides higher-level caching abstractions with automatic
// JSON marshaling, logging and error handling
type CacheWrapper struct {
	cache      CacheService
	defaultTTL time.Duration
}

// NewCacheWrapper creates a new cache wrapper
func NewCacheWrapper(cache CacheService, defaultTTL time.Duration) *CacheWrapper {
	return &CacheWrapper{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// GetOrSet retrieves from cache or executes the fetcher function.
// This is the low-level method that returns []byte.
func (w *CacheWrapper) GetOrSet(key string, ttl time.Duration, fetcher func() (interface{}, error)) ([]byte, error) {
	// Try to get from cache first
	data, err := w.cache.Get(key)
	if err == nil {
		// Validate that cached data is valid JSON before returning
		var temp interface{}
		if err := json.Unmarshal(data, &temp); err != nil {
			logger.New().WithField("cache_key", key).WithError(err).Warn("Cached data is corrupted, treating as cache miss")
			// Fall through to fetcher
		} else {
			logger.New().WithField("cache_key", key).Debug("Cache hit")
			return data, nil
		}
	}

	// Cache miss or corrupted data - call fetcher
	logger.New().WithField("cache_key", key).Debug("Cache miss")

	result, err := fetcher()
	if err != nil {
		return nil, fmt.Errorf("fetcher failed: %w", err)
	}

	data, err = json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := w.cache.Set(key, data, ttl); err != nil {
		logger.New().WithField("cache_key", key).WithError(err).Warn("Failed to cache response")
	}

	return data, nil
}

// GetOrSetTyped retrieves from cache or fetches, unmarshaling into out
func (w *CacheWrapper) GetOrSetTyped(key string, ttl time.Duration, out interface{}, fetcher func() (interface{}, error)) error {
	data, err := w.GetOrSet(key, ttl, fetcher)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		logger.New().WithField("cache_key", key).WithError(err).Warn("Failed to unmarshal cached data")
		return err
	}

	return nil
}

// Delete removes a key from cache
func (w *CacheWrapper) Delete(key string) error {
	return w.cache.Delete(key)
}

// Exists checks if a key exists in cache
func (w *CacheWrapper) Exists(key string) bool {
	return w.cache.Exists(key)
}
