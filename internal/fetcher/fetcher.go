// Package fetcher is the single point of network I/O for both pipeline
// stages: rate-limited, retrying HTTP GETs with a polite user agent.
package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher downloads remote pages. Implementations must enforce the
// configured minimum delay between consecutive requests.
type Fetcher interface {
	// Get performs a GET request and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)

	// Requests reports how many HTTP requests have been issued so far,
	// retries included. Recorded in stage-two source metadata.
	Requests() int64
}

// Reason classifies a terminal fetch failure.
type Reason string

const (
	// ReasonNetwork covers transient failures that survived every retry:
	// timeouts, connection resets, 5xx, 429.
	ReasonNetwork Reason = "network"
	// ReasonNotFound is a definitive client error (4xx other than 429);
	// never retried.
	ReasonNotFound Reason = "not_found"
)

// Error is the terminal failure of a fetch, after retries where applicable.
type Error struct {
	Reason   Reason
	URL      string
	Attempts int
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s: %s after %d attempt(s)", e.URL, e.Reason, e.Attempts)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a definitive missing-page failure.
func IsNotFound(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Reason == ReasonNotFound
}

// IsNetwork reports whether err is an exhausted transient failure.
func IsNetwork(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Reason == ReasonNetwork
}
