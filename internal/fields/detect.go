package fields

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a shape check with the layout used to confirm it parses
type datePattern struct {
	pattern *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		layouts: []string{"2006-01-02"},
	},
	{
		pattern: regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
		layouts: []string{"01/02/2006"},
	},
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`),
		layouts: []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02T15:04",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
		},
	},
}

var numericString = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// numericNoise strips common display formatting before the numeric check
var numericNoise = strings.NewReplacer(",", "", "$", "", "%", "", " ", "", "\t", "")

// looksLikeDate reports whether the string matches a known date shape and
// actually parses as a date. Shape match alone is not enough: "2024-13-45"
// must not classify as a date.
func looksLikeDate(s string) bool {
	for _, dp := range datePatterns {
		if !dp.pattern.MatchString(s) {
			continue
		}
		for _, layout := range dp.layouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
	}
	return false
}

// looksLikeNumber reports whether the string is a signed decimal once common
// formatting characters (comma, currency, percent, whitespace) are removed.
func looksLikeNumber(s string) bool {
	cleaned := numericNoise.Replace(s)
	if cleaned == "" {
		return false
	}
	return numericString.MatchString(cleaned)
}
