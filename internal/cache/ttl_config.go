package cache

import "time"

// TTLConfig defines cache TTL durations for the different widget endpoints.
// These can be adjusted based on data freshness requirements.
type TTLConfig struct {
	// Widget lookup TTLs
	WidgetList time.Duration
	WidgetByID time.Duration

	// API response payloads (per-widget override wins when set)
	WidgetData time.Duration

	// Default TTL for unspecified endpoints
	Default time.Duration
}

// DefaultTTLConfig returns default TTL configuration
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		// Widget configuration changes rarely outside of explicit edits,
		// and edits invalidate these keys anyway
		WidgetList: 5 * time.Minute,
		WidgetByID: 5 * time.Minute,

		WidgetData: 5 * time.Minute,

		Default: 5 * time.Minute,
	}
}
