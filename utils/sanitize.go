package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user-supplied HTML (blog descriptions, comments) to
// prevent XSS while keeping the formatting tags the editor produces.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
