package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure
type Kind string

const (
	// KindTimeout means the request exceeded its deadline
	KindTimeout Kind = "timeout"

	// KindBlocked means the site refused the request (403, 429, paywall)
	// Retrying a block only makes it worse
	KindBlocked Kind = "blocked"

	// KindNotFound means the page does not exist (404, 410)
	KindNotFound Kind = "not_found"

	// KindUnavailable means a server or network failure worth retrying
	KindUnavailable Kind = "unavailable"
)

// Error describes a failed page fetch
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a fetch error from an error chain, or nil
func AsError(err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
