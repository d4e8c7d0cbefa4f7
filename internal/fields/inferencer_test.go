package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode parses a JSON literal into the interface{} shapes InferFields expects
func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

// byPath indexes descriptors for lookup in assertions
func byPath(descriptors []FieldDescriptor) map[string]FieldDescriptor {
	m := make(map[string]FieldDescriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.Path] = d
	}
	return m
}

func TestInferFields_NestedObject(t *testing.T) {
	sample := decode(t, `{"a": {"b": 1, "c": "2024-01-01"}}`)

	descriptors := InferFields(sample, DefaultMaxDepth)
	paths := byPath(descriptors)

	require.Contains(t, paths, "a")
	require.Contains(t, paths, "a.b")
	require.Contains(t, paths, "a.c")

	assert.Equal(t, TypeNumber, paths["a.b"].Type)
	assert.Equal(t, TypeDate, paths["a.c"].Type)
	assert.Equal(t, nestedObjectMarker, paths["a"].Sample)
}

func TestInferFields_DynamicKeyObject(t *testing.T) {
	sample := decode(t, `{"rates": {"USD": 1, "EUR": 0.9}}`)

	descriptors := InferFields(sample, DefaultMaxDepth)
	paths := byPath(descriptors)

	require.Contains(t, paths, "rates", "the parent summary field is kept")
	require.Contains(t, paths, "rates.USD")
	require.Contains(t, paths, "rates.EUR")

	assert.Equal(t, TypeNumber, paths["rates.USD"].Type)
	assert.Equal(t, TypeNumber, paths["rates.EUR"].Type)
}

func TestInferFields_TopLevelArraySamplesFirstElement(t *testing.T) {
	sample := decode(t, `[{"name": "BTC", "price": 67000.5}, {"volume": 12}]`)

	descriptors := InferFields(sample, DefaultMaxDepth)
	paths := byPath(descriptors)

	require.Contains(t, paths, "name")
	require.Contains(t, paths, "price")
	assert.Equal(t, TypeNumber, paths["price"].Type)

	assert.NotContains(t, paths, "volume", "only the first array element is sampled")
}

func TestInferFields_EmptyInputs(t *testing.T) {
	assert.Empty(t, InferFields(nil, DefaultMaxDepth))
	assert.Empty(t, InferFields(decode(t, `[]`), DefaultMaxDepth))
	assert.Empty(t, InferFields(decode(t, `{}`), DefaultMaxDepth))
	assert.Empty(t, InferFields(decode(t, `"scalar"`), DefaultMaxDepth))
	assert.Empty(t, InferFields(decode(t, `{"a": 1}`), 0))
}

func TestInferFields_DepthBound(t *testing.T) {
	sample := decode(t, `{"l1": {"l2": {"l3": {"l4": 1}}}}`)

	descriptors := InferFields(sample, 3)
	paths := byPath(descriptors)

	assert.Contains(t, paths, "l1")
	assert.Contains(t, paths, "l1.l2")
	assert.Contains(t, paths, "l1.l2.l3")
	assert.NotContains(t, paths, "l1.l2.l3.l4", "walk stops at maxDepth")
}

func TestInferFields_ArrayValueNotRecursed(t *testing.T) {
	sample := decode(t, `{"items": [{"id": 1}, {"id": 2}]}`)

	descriptors := InferFields(sample, DefaultMaxDepth)
	paths := byPath(descriptors)

	require.Contains(t, paths, "items")
	assert.NotContains(t, paths, "items.id")
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, paths["items"].Sample,
		"array sample is its first element")
}

func TestInferFields_TypeInference(t *testing.T) {
	sample := decode(t, `{
		"active": true,
		"count": 42,
		"name": "bitcoin",
		"created": "2024-03-15T10:30:00Z",
		"us_date": "03/15/2024",
		"amount": "$1,234.56",
		"percent": "12.5%",
		"mixed": "abc123"
	}`)

	paths := byPath(InferFields(sample, DefaultMaxDepth))

	assert.Equal(t, TypeBoolean, paths["active"].Type)
	assert.Equal(t, TypeNumber, paths["count"].Type)
	assert.Equal(t, TypeString, paths["name"].Type)
	assert.Equal(t, TypeDate, paths["created"].Type)
	assert.Equal(t, TypeDate, paths["us_date"].Type)
	assert.Equal(t, TypeNumber, paths["amount"].Type, "formatted numeric strings count as numbers")
	assert.Equal(t, TypeNumber, paths["percent"].Type)
	assert.Equal(t, TypeString, paths["mixed"].Type)
}

func TestInferFields_InvalidDateShapesAreNotDates(t *testing.T) {
	paths := byPath(InferFields(decode(t, `{"bad": "2024-13-45", "id": "2024-01-01x"}`), DefaultMaxDepth))

	assert.Equal(t, TypeString, paths["bad"].Type, "shape match without a successful parse is not a date")
	assert.Equal(t, TypeString, paths["id"].Type)
}

func TestInferFields_Deterministic(t *testing.T) {
	sample := decode(t, `{"z": 1, "a": 2, "m": {"y": 3, "b": 4}}`)

	first := InferFields(sample, DefaultMaxDepth)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, InferFields(sample, DefaultMaxDepth))
	}

	// No descriptor may carry an empty type
	for _, d := range first {
		assert.NotEmpty(t, d.Type)
	}
}

func TestInferFields_NullValue(t *testing.T) {
	paths := byPath(InferFields(decode(t, `{"gone": null}`), DefaultMaxDepth))

	require.Contains(t, paths, "gone")
	assert.Equal(t, TypeString, paths["gone"].Type)
	assert.Nil(t, paths["gone"].Sample)
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"totalMarketCap": "Total Market Cap",
		"user_name":      "User Name",
		"api-key":        "Api Key",
		"price":          "Price",
		"USD":            "USD",
		"priceUSD":       "Price USD",
		"":               "",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, Humanize(input), "humanize(%q)", input)
	}
}

func TestLooksLikeNumber(t *testing.T) {
	assert.True(t, looksLikeNumber("1234"))
	assert.True(t, looksLikeNumber("-12.5"))
	assert.True(t, looksLikeNumber("+3"))
	assert.True(t, looksLikeNumber("$1,234.56"))
	assert.True(t, looksLikeNumber("12.5%"))
	assert.True(t, looksLikeNumber(" 42 "))

	assert.False(t, looksLikeNumber(""))
	assert.False(t, looksLikeNumber("$"))
	assert.False(t, looksLikeNumber("12.5.6"))
	assert.False(t, looksLikeNumber("abc123"))
	assert.False(t, looksLikeNumber("1e5"))
}
