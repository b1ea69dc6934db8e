package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultWaitTimeout  = 600 * time.Second
	DefaultPollInterval = 10 * time.Second
)

// WaitOptions configures WaitForScanCompletion. Zero durations fall back to
// the defaults.
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration

	// OnPoll is invoked with every payload fetched during the wait,
	// terminal or not.
	OnPoll func(scan *Scan)
}

// WaitForScanCompletion polls the scan until it reaches a terminal status.
// COMPLETED returns the final payload, FAILED returns a *ScanFailedError and
// an exhausted budget returns a *TimeoutError. Transport and HTTP errors
// abort the wait immediately. The budget is checked before each poll, a poll
// started within the budget still completes, so a scan finishing right at
// the deadline is picked up.
func (a EncephalonApiClient) WaitForScanCompletion(ctx context.Context, scanId string, opts WaitOptions) (*Scan, error) {
	if scanId == "" {
		return nil, errors.New("scan id cannot be empty")
	}
	if opts.Timeout < 0 || opts.PollInterval < 0 {
		return nil, errors.New("timeout and poll interval cannot be negative")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultWaitTimeout
	}
	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	start := time.Now()
	lastStatus := ""
	polls := 0

	for {
		if polls > 0 && time.Since(start) > timeout {
			return nil, &TimeoutError{ScanUUID: scanId, Timeout: timeout, LastStatus: lastStatus, Polls: polls}
		}

		scan, _, err := a.GetScanWithContext(ctx, scanId)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("waiting for scan %s aborted: %w", scanId, ctx.Err())
			}
			return nil, err
		}

		polls = polls + 1
		lastStatus = scan.Status

		if opts.OnPoll != nil {
			opts.OnPoll(scan)
		}

		switch scan.Status {
		case ScanStatusCompleted:
			log.Debug().Str("scan", scanId).Int("polls", polls).Msg("Scan completed")
			return scan, nil
		case ScanStatusFailed:
			return nil, &ScanFailedError{Scan: scan}
		}

		log.Debug().Str("scan", scanId).Str("status", scan.Status).Int("polls", polls).Msg("Scan not terminal yet")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for scan %s aborted: %w", scanId, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
