package fetch

import "fmt"

// NotFoundError means the challenge does not correspond to a published entry.
// It aborts the whole run: there is nothing to fetch.
type NotFoundError struct {
	Challenge int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no published downloads for challenge %d", e.Challenge)
}

// ServiceUnavailableError represents a transport-level failure contacting the
// remote download index.
type ServiceUnavailableError struct {
	URL string
	Err error // Underlying error, if any
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("download index unavailable at %s: %v", e.URL, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// RetryableError represents a transient mid-stream failure (connection reset,
// timeout). Appended is the number of bytes durably written before the
// failure; a retry resumes from the then-current on-disk size.
type RetryableError struct {
	Name     string
	Appended int64
	Err      error // Underlying error, if any
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("transient failure downloading %s after %d bytes: %v", e.Name, e.Appended, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// FatalFetchError means the server rejected the request or the range outright.
// The file cannot be resumed from its current offset and must be restarted
// from zero, exactly once.
type FatalFetchError struct {
	Name       string
	StatusCode int    // HTTP status code of the rejection
	Status     string // Status line as reported by the server
}

func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("fetch rejected for %s: %s", e.Name, e.Status)
}

// CompletionMismatchError means the stream ended cleanly but the on-disk byte
// count does not match the manifest size.
type CompletionMismatchError struct {
	Name string
	Got  int64
	Want int64
}

func (e *CompletionMismatchError) Error() string {
	return fmt.Sprintf("incomplete download of %s: got %d bytes, want %d", e.Name, e.Got, e.Want)
}
