// Package fields infers a flat list of addressable, typed field descriptors
// from a sample JSON payload. The widget configuration UI uses the result to
// let a user pick which fields a widget displays or charts.
package fields

import (
	"fmt"
	"sort"
)

// FieldType is the inferred semantic type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
)

// DefaultMaxDepth bounds the recursive walk over nested objects
const DefaultMaxDepth = 3

// nestedObjectMarker is the sample shown for fields whose value is an object
const nestedObjectMarker = "[object]"

// FieldDescriptor identifies one addressable field within a payload
type FieldDescriptor struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Path   string      `json:"path"`
	Type   FieldType   `json:"type"`
	Sample interface{} `json:"sample,omitempty"`
}

// InferFields walks a decoded JSON value (the interface{} shapes produced by
// encoding/json: nil, bool, float64, string, []interface{},
// map[string]interface{}) and returns its field descriptors. The output is
// deterministic for a given input and depth limit; maxDepth <= 0 yields an
// empty list. Arrays are sampled by their first element only, so fields
// present only in later elements of a heterogeneous array are not reported.
func InferFields(sample interface{}, maxDepth int) []FieldDescriptor {
	return inferFields(sample, "", maxDepth)
}

func inferFields(sample interface{}, path string, maxDepth int) []FieldDescriptor {
	if sample == nil || maxDepth <= 0 {
		return nil
	}

	switch value := sample.(type) {
	case []interface{}:
		if len(value) == 0 {
			return nil
		}
		return inferFields(value[0], indexedPath(path), maxDepth)

	case map[string]interface{}:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var descriptors []FieldDescriptor
		for _, key := range keys {
			child := value[key]
			fieldPath := key
			if path != "" {
				fieldPath = path + "." + key
			}

			descriptors = append(descriptors, FieldDescriptor{
				Key:    key,
				Label:  Humanize(key),
				Path:   fieldPath,
				Type:   inferType(child),
				Sample: sampleValue(child),
			})

			// Keep both the parent summary and its children so a caller can
			// address either the whole sub-object or a specific leaf
			if nested, ok := child.(map[string]interface{}); ok {
				descriptors = append(descriptors, inferFields(nested, fieldPath, maxDepth-1)...)
			}
		}
		return descriptors

	default:
		// Scalars at the top level carry no addressable structure
		return nil
	}
}

// inferType maps a decoded JSON value to its display type. Strings are
// sniffed for date and numeric content; everything unrecognized is a string.
func inferType(value interface{}) FieldType {
	switch v := value.(type) {
	case bool:
		return TypeBoolean
	case float64:
		return TypeNumber
	case string:
		if looksLikeDate(v) {
			return TypeDate
		}
		if looksLikeNumber(v) {
			return TypeNumber
		}
		return TypeString
	default:
		return TypeString
	}
}

// sampleValue extracts the representative sample for a field value
func sampleValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		return v[0]
	case map[string]interface{}:
		return nestedObjectMarker
	default:
		return value
	}
}

func indexedPath(path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s[0]", path)
}
