// Package validate holds input validation shared by the CLI and gateway.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Password reports whether s meets the platform's password policy: at
// least 8 characters with one uppercase, one lowercase, and one digit.
func Password(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

const (
	maxTitleLen   = 100
	maxMessageLen = 1000
)

// AnalysisRequest checks a title/message/fileIDs triple before it is sent
// to the analysis service.
func AnalysisRequest(title, message string, fileIDs []string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("title must be less than %d characters", maxTitleLen)
	}
	if len(message) > maxMessageLen {
		return fmt.Errorf("message must be less than %d characters", maxMessageLen)
	}
	if len(fileIDs) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	return nil
}

// FileSize reports whether size fits within maxSizeMB megabytes.
func FileSize(size int64, maxSizeMB int64) bool {
	return size <= maxSizeMB*1024*1024
}

var searchUnsafe = regexp.MustCompile(`[^\w\s]`)

// SanitizeSearchQuery strips characters outside word/space classes from a
// user-supplied search query.
func SanitizeSearchQuery(query string) string {
	return searchUnsafe.ReplaceAllString(query, "")
}
