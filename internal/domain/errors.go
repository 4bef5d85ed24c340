package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotRepository is how a refs lister signals "this remote is not a git
	// repository", as opposed to other I/O failures.
	ErrNotRepository = errors.New("not a git repository")

	// ErrRepoNotIdentified indicates no path prefix of a probed URL answered
	// a remote refs listing.
	ErrRepoNotIdentified = errors.New("unable to identify as a git repo")

	// ErrNoDefaultBranch indicates a repository was found but HEAD resolves
	// to no branch (detached or empty repository). This condition is always
	// surfaced, never softened by the fail-open policy.
	ErrNoDefaultBranch = errors.New("no default branch")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL indicates an invalid URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrMissingDestination indicates a fetcher was invoked without a usable
	// destination path.
	ErrMissingDestination = errors.New("missing destination path")
)

// GuessError reports a failed repository identification for a URL.
type GuessError struct {
	URL string
	Err error
}

func (e *GuessError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoDefaultBranch):
		return fmt.Sprintf("no tag was obtained while getting default branch name from %s", e.URL)
	case errors.Is(e.Err, ErrRepoNotIdentified):
		return fmt.Sprintf("unable to identify %s as a git repo", e.URL)
	}
	return fmt.Sprintf("repo guess failed for %s: %v", e.URL, e.Err)
}

func (e *GuessError) Unwrap() error {
	return e.Err
}

// NewGuessError creates a new GuessError wrapping the given sentinel
func NewGuessError(url string, err error) *GuessError {
	return &GuessError{URL: url, Err: err}
}

// SchemeError reports a URL scheme no registered fetcher can handle.
type SchemeError struct {
	Scheme string
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("unhandled scheme %q", e.Scheme)
}

// NewSchemeError creates a new SchemeError
func NewSchemeError(scheme string) *SchemeError {
	return &SchemeError{Scheme: scheme}
}

// FetchError represents an error while fetching a remote resource
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new RetryableError
func NewRetryableError(err error, retryAfter int) *RetryableError {
	return &RetryableError{
		Err:        err,
		RetryAfter: retryAfter,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		// Retry on specific status codes
		switch fetchErr.StatusCode {
		case 429, 503, 502, 504:
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
