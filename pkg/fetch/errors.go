package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers non-success statuses and failed round trips. The
	// caller decides whether absence matters.
	ErrNotFound = errors.New("remote resource not found")

	// ErrMalformedResponse is a structural XML or JSON decode failure.
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError describes a request that produced no usable body.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the round trip itself failed
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrNotFound }

// MalformedResponseError wraps the decoder error for a body.
type MalformedResponseError struct {
	URL    string
	Format string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("decoding %s from %s: %v", e.Format, e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
