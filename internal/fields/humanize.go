package fields

import (
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	separators    = regexp.MustCompile(`[_\-]+`)
)

// Humanize turns a raw JSON key into a display label: camelCase boundaries
// and snake/kebab separators become word breaks, each word is title-cased.
// "totalMarketCap" -> "Total Market Cap", "user_name" -> "User Name".
func Humanize(key string) string {
	if key == "" {
		return ""
	}

	spaced := camelBoundary.ReplaceAllString(key, "$1 $2")
	spaced = separators.ReplaceAllString(spaced, " ")

	words := strings.Fields(spaced)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
