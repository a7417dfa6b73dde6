// Package upstream holds the pagination, pacing and retry plumbing shared by
// the marketplace adapters, plus text cleanup for upstream content.
package upstream

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// FetchConfig bounds how much work a single FetchCandidates call may do
type FetchConfig struct {
	MaxRecords     int           // cap on records returned
	MaxRequests    int           // cap on page requests issued
	PageSize       int           // records requested per page
	PageDelay      time.Duration // minimum spacing between page requests
	MaxAttempts    int           // attempts per page for transient failures
	RetryBaseDelay time.Duration // first backoff step, doubled per attempt
	Timeout        time.Duration // per HTTP request
}

// WithDefaults fills zero fields with production defaults
func (c FetchConfig) WithDefaults() FetchConfig {
	if c.MaxRecords <= 0 {
		c.MaxRecords = 100
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = 5
	}
	if c.PageSize <= 0 {
		c.PageSize = 20
	}
	if c.PageDelay < 0 {
		c.PageDelay = 0
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// NextPageSize returns how many records to ask for given how many are
// already collected
func (c FetchConfig) NextPageSize(collected int) int {
	return max(min(c.PageSize, c.MaxRecords-collected), 0)
}

// NewLimiter paces page requests at one per delay. The first request is
// never delayed.
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Backoff returns the wait before retry number attempt (1-based):
// base, 2*base, 4*base, ...
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retryable reports whether an HTTP status is worth another attempt
func Retryable(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout
}

// RetryAfter reads a wait duration from the named header. Both delta-seconds
// and HTTP-date forms are accepted; anything unparseable yields fallback.
func RetryAfter(h http.Header, name string, now time.Time, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(h.Get(name))
	if value == "" {
		return fallback
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if wait := at.Sub(now); wait > 0 {
			return wait.Round(time.Second)
		}
		return 0
	}

	return fallback
}
