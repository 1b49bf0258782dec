package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for hierarchy node fields.
const (
	maxLabelLen = 200
)

// validateNodeLabel checks a hierarchy node label and returns the first
// error found, or "" when valid.
func validateNodeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "label is required"
	}
	if utf8.RuneCountInString(label) > maxLabelLen {
		return "label is too long (max 200 characters)"
	}
	return ""
}
