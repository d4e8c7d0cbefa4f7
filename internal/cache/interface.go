package cache

import "time"

// CacheService defines the interface for generic cache operations.
// This interface allows swapping the in-memory implementation for Redis
// without major refactoring.
type CacheService interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Exists(key string) bool
	Clear() error
}

// Config holds configuration for cache implementations
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxSize         int
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: 2 * time.Minute,
		MaxSize:         50,
	}
}
