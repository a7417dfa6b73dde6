package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/toolfinder/backend/internal/domain"
)

// Exit code constants
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitConfigError = 3
	ExitUpstream    = 4
	ExitRateLimited = 5
	ExitTimeout     = 6
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

// describeError turns recommendation failures into CLIErrors
func describeError(err error) *CLIError {
	var rateLimitErr *domain.RateLimitError

	switch {
	case errors.As(err, &rateLimitErr):
		seconds := int(math.Ceil(rateLimitErr.RetryAfter.Seconds()))
		return &CLIError{
			Summary:    "the marketplace is rate limiting requests",
			Suggestion: fmt.Sprintf("try again in %ds", max(seconds, 1)),
			ExitCode:   ExitRateLimited,
		}
	case errors.Is(err, domain.ErrRateLimited):
		return &CLIError{
			Summary:    "the marketplace is rate limiting requests",
			Suggestion: "try again in a minute",
			ExitCode:   ExitRateLimited,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &CLIError{
			Summary:    "timed out waiting for the marketplace",
			Suggestion: "raise --timeout or lower fetch.max_requests",
			ExitCode:   ExitTimeout,
		}
	case errors.Is(err, domain.ErrInvalidRequest):
		return &CLIError{
			Summary:  "criteria is required",
			ExitCode: ExitUsageError,
		}
	default:
		return &CLIError{
			Summary:  "failed to fetch products from the marketplace",
			Detail:   err.Error(),
			ExitCode: ExitUpstream,
		}
	}
}

// ExitCode returns the process exit code for an error returned by the
// command tree
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}

// PrintError writes err to w, with detail and suggestion lines for CLIErrors
func PrintError(w io.Writer, err error, useColors bool) {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &CLIError{Summary: err.Error(), ExitCode: ExitGeneral}
	}
	NewPrinter(io.Discard, w, useColors).FormatError(cliErr)
}
