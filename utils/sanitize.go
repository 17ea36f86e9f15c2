package utils

import "github.com/microcosm-cc/bluemonday"

var (
	sanitizer  = bluemonday.UGCPolicy()
	textPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeText strips all markup; used for names, notes and other fields
// that must stay plain text.
func SanitizeText(input string) string {
	return textPolicy.Sanitize(input)
}
