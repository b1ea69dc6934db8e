package config

import (
	"fmt"
	"net/url"

	"github.com/docker/go-units"
)

// ValidateURL validates that a string is a valid URL.
func ValidateURL(urlStr string, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("%s must include a scheme (http/https)", fieldName)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	return nil
}

// ParseMaxUploadSize parses a human-readable size string (e.g., "500MB", "1GB") into bytes.
func ParseMaxUploadSize(sizeStr string) (int64, error) {
	size, err := units.FromHumanSize(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max upload size: %w", err)
	}
	return size, nil
}

// ValidateToken validates that a token is not empty.
func ValidateToken(token string, fieldName string) error {
	if token == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateWorkerCount validates that the parallel upload worker count is within acceptable bounds.
func ValidateWorkerCount(workers int) error {
	if workers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", workers)
	}
	if workers > 100 {
		return fmt.Errorf("worker count too high (max 100), got %d", workers)
	}
	return nil
}
