package utils

import (
	"errors"
	"regexp"
	"strings"
)

// Compiled regular expressions for validation
var (
	// Allow alphanumeric, underscore, hyphen, dot - common in transit IDs
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	// Day tokens are a weekday name or a YYYYMMDD date
	dayTokenPattern = regexp.MustCompile(`^([A-Za-z]{6,9}|[0-9]{8})$`)

	// Clock values are HH:MM, hours may exceed 23
	clockPattern = regexp.MustCompile(`^[0-9]{1,2}:[0-9]{2}$`)

	// Detect HTML/script tags
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateDayToken checks the shape of a day parameter before it is resolved
func ValidateDayToken(day string) error {
	if day == "" {
		return errors.New("day cannot be empty")
	}
	if !dayTokenPattern.MatchString(day) {
		return errors.New("day must be a weekday name or a date in YYYYMMDD format")
	}
	return nil
}

// ValidateClock checks the shape of an HH:MM parameter
func ValidateClock(value string) error {
	if value == "" {
		return errors.New("time cannot be empty")
	}
	if !clockPattern.MatchString(value) {
		return errors.New("time must be in HH:MM format")
	}
	return nil
}

// SanitizeInput removes HTML tags and other potentially dangerous content
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}
