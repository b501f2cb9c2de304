package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// ValidateReference validates a document reference string
func ValidateReference(reference string) error {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return fmt.Errorf("reference is required")
	}
	if len(trimmed) > 64 {
		return fmt.Errorf("reference exceeds 64 characters: %s", trimmed)
	}
	return nil
}

// ValidateTitle validates a document title
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 256 {
		return fmt.Errorf("title exceeds 256 characters")
	}
	return nil
}

// SanitizeString removes control characters from user-supplied text
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
