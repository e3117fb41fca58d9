package api

import (
	"errors"
	"fmt"
)

// FetchError is returned for transport failures (Status == 0) and non-2xx responses.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Message is Error without the operation prefix.
func (e *FetchError) Message() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("status %d: %v", e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request may succeed: network failures, timeouts,
// 408, 429 and 5xx.
func (e *FetchError) Retryable() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == 408, e.Status == 429:
		return true
	default:
		return e.Status >= 500
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}
