package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyBuilder helps construct consistent cache keys
type KeyBuilder struct {
	namespace string
	parts     []string
}

// NewKeyBuilder creates a new key builder with a namespace
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{
		namespace: namespace,
		parts:     make([]string, 0),
	}
}

// Add adds a part to the cache key
func (b *KeyBuilder) Add(part string) *KeyBuilder {
	b.parts = append(b.parts, part)
	return b
}

// AddParams adds key=value parameters to the key in sorted-key order
func (b *KeyBuilder) AddParams(params map[string]string) *KeyBuilder {
	if len(params) == 0 {
		return b
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	paramParts := make([]string, 0, len(names))
	for _, name := range names {
		paramParts = append(paramParts, fmt.Sprintf("%s=%s", name, params[name]))
	}

	b.parts = append(b.parts, strings.Join(paramParts, "&"))
	return b
}

// Build constructs the final cache key
func (b *KeyBuilder) Build() string {
	if b.namespace == "" {
		return strings.Join(b.parts, ":")
	}
	return b.namespace + ":" + strings.Join(b.parts, ":")
}

// RequestKey derives the cache key for an API request from its URL and
// header set. Header names are serialized in sorted order: Go maps carry no
// insertion order, so the key must impose one to stay deterministic.
func RequestKey(url string, headers map[string]string) string {
	return NewKeyBuilder("response").
		Add(url).
		AddParams(headers).
		Build()
}

// WidgetKey generates a cache key for a single widget lookup
func WidgetKey(id string) string {
	return NewKeyBuilder("widget").Add("id").Add(id).Build()
}

// WidgetListKey generates a cache key for the widget list
func WidgetListKey(limit, offset int) string {
	return NewKeyBuilder("widget").
		Add("list").
		Add(fmt.Sprintf("%d:%d", limit, offset)).
		Build()
}
