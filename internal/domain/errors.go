package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamUnavailable is returned when the marketplace API request fails
	ErrUpstreamUnavailable = errors.New("marketplace API request failed")

	// ErrRateLimited is returned when the marketplace API throttles us
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotConfigured is returned when no recommendation service is wired
	ErrNotConfigured = errors.New("recommendation service not configured")
)

// RateLimitError reports an upstream throttling condition along with how long
// the caller should wait before trying again.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %s, retry after %s", ErrRateLimited, e.Provider, e.RetryAfter)
}

// Unwrap lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
