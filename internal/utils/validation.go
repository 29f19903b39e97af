package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Compiled regular expressions for validation
var (
	// Allow alphanumeric, underscore, hyphen, dot - common in scenario and dataset names
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	// Detect HTML/script tags
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Dataset kinds accepted by upload and overview endpoints.
const (
	DatasetKindCase1 = "case1"
	DatasetKindCase2 = "case2"
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

// ValidateDatasetKind checks that kind names one of the two case datasets.
func ValidateDatasetKind(kind string) error {
	switch kind {
	case DatasetKindCase1, DatasetKindCase2:
		return nil
	default:
		return fmt.Errorf("unknown dataset kind %q (expected %s or %s)",
			kind, DatasetKindCase1, DatasetKindCase2)
	}
}

// ValidateUploadFilename checks that an uploaded dataset file carries one of
// the supported extensions.
func ValidateUploadFilename(name string) error {
	if name == "" {
		return errors.New("filename cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return nil
	default:
		return errors.New("unsupported file type (expected .csv or .xlsx)")
	}
}

// SanitizeInput removes HTML tags and other potentially dangerous content
func SanitizeInput(input string) string {
	// Remove HTML tags
	sanitized := htmlTagPattern.ReplaceAllString(input, "")

	// Trim whitespace
	sanitized = strings.TrimSpace(sanitized)

	return sanitized
}
