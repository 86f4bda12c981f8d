package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc   = bluemonday.UGCPolicy()
	plain = bluemonday.StrictPolicy()
)

// Sanitize cleans user supplied HTML (post and comment bodies) to prevent XSS.
func Sanitize(input string) string {
	return strings.TrimSpace(ugc.Sanitize(input))
}

// SanitizePlain strips all markup; used for titles and names.
func SanitizePlain(input string) string {
	return strings.TrimSpace(plain.Sanitize(input))
}
