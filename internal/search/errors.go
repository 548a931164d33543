// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a network failure reaching the search endpoint.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("granule search request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response from the search endpoint.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e.NotServed() {
		return fmt.Sprintf("granule search returned HTTP %d: dataset or provider not served", e.StatusCode)
	}
	return fmt.Sprintf("granule search returned HTTP %d", e.StatusCode)
}

// NotServed reports whether the service answered 404, meaning the requested
// dataset/provider combination is not available there.
func (e *HTTPStatusError) NotServed() bool { return e.StatusCode == http.StatusNotFound }

// MalformedResponseError reports a page body that is not valid JSON or lacks
// the header/entries structure.
type MalformedResponseError struct {
	Page   int
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response for page %d: %s: %v", e.Page, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response for page %d: %s", e.Page, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// CancelledError reports that the caller cancelled the search. Err is the
// context error (context.Canceled or context.DeadlineExceeded).
type CancelledError struct {
	Page int
	Err  error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("granule search cancelled at page %d: %v", e.Page, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// PaginationLimitError reports that the service kept announcing more pages
// after MaxPages pages were fetched.
type PaginationLimitError struct {
	Limit int
}

func (e *PaginationLimitError) Error() string {
	return fmt.Sprintf("granule search exceeded %d pages without reaching the last page", e.Limit)
}

// ErrorKind returns a short label for the error kind in err's chain, used in
// metrics and logs.
func ErrorKind(err error) string {
	var (
		transport *TransportError
		status    *HTTPStatusError
		malformed *MalformedResponseError
		cancelled *CancelledError
		pageLimit *PaginationLimitError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &status):
		return "http_status"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &cancelled):
		return "cancelled"
	case errors.As(err, &pageLimit):
		return "pagination_limit"
	default:
		return "other"
	}
}
