package client

import (
	"fmt"
	"time"
)

// APIError is returned for any response with a status code >= 400.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request to %s failed with status %d", e.URL, e.StatusCode)
}

// ScanFailedError is returned when a scan reaches the FAILED status. Scan
// holds the last payload fetched from the API, including its state message.
type ScanFailedError struct {
	Scan *Scan
}

func (e *ScanFailedError) Error() string {
	if e.Scan == nil {
		return "scan failed"
	}
	if e.Scan.State != "" {
		return fmt.Sprintf("scan %s failed: %s", e.Scan.UUID, e.Scan.State)
	}
	return fmt.Sprintf("scan %s failed", e.Scan.UUID)
}

// TimeoutError is returned when a scan does not reach a terminal status
// within the configured wait budget.
type TimeoutError struct {
	ScanUUID   string
	Timeout    time.Duration
	LastStatus string
	Polls      int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("scan %s did not reach a terminal status within %s, last status %q after %d polls", e.ScanUUID, e.Timeout, e.LastStatus, e.Polls)
}
