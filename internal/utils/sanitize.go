package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every HTML element from user supplied catalog text.
// The policy escapes entities, so the result is unescaped back to plain text.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}

	clean := SanitizeText(*s)

	return &clean
}
