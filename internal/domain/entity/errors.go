package entity

import (
	"errors"
	"fmt"
	"time"
)

// Standard domain errors
var (
	ErrQuotaExceeded       = errors.New("ai quota exceeded for this month")
	ErrProviderUnavailable = errors.New("classification provider unavailable")
	ErrProviderTimeout     = errors.New("classification provider timed out")
	ErrProviderSchema      = errors.New("classification provider returned an invalid schema")
	ErrEntityNotFound      = errors.New("the requested entity was not found")
)

// ValidationError rejects bad input before any side effect happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// RateLimitError carries enough state for the caller to back off.
type RateLimitError struct {
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d remaining, resets at %s",
		e.Remaining, e.ResetAt.Format(time.RFC3339))
}

// ScrapeError isolates a single competitor's failed fetch from the rest of
// the cycle.
type ScrapeError struct {
	URL string
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape failed for %s: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }
