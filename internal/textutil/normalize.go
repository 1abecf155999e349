// Package textutil provides text cleanup shared by the evaluation pipeline.
package textutil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// Normalize strips markup and redundant whitespace from user-supplied text and
// returns the cleaned text together with its word count. Empty or
// whitespace-only input yields ("", 0); absence of text is a valid state for
// callers, never an error.
func Normalize(text string) (string, int) {
	cleaned := html.UnescapeString(stripPolicy.Sanitize(text))
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	return cleaned, CountWords(cleaned)
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
