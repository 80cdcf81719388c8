package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Metric names are lowercase snake_case, 2-100 chars
	metricNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,99}$`)

	// Username must be alphanumeric with underscores, 3-50 chars
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateMetricName checks if a metric name is well formed
func ValidateMetricName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("metric name cannot be empty")
	}

	if !metricNameRegex.MatchString(name) {
		return errors.New("metric name must be lowercase snake_case starting with a letter")
	}

	return nil
}

// ValidateRuleName checks if a rule name is acceptable
func ValidateRuleName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("rule name cannot be empty")
	}

	if len(name) > 200 {
		return errors.New("rule name must not exceed 200 characters")
	}

	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-50 alphanumeric characters or underscores")
	}

	return nil
}
