package mist

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means a 2xx body could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")
	// ErrMalformedPage means a search page had no results array.
	ErrMalformedPage = errors.New("malformed search page")
	// ErrPaginationLoop means the API handed back a cursor that was already followed.
	ErrPaginationLoop = errors.New("pagination cursor repeated")
)

// TransportError is a failure to get any HTTP response at all: DNS, connect,
// reset, timeout, or cancellation of the request context.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a response with a non-2xx status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mist API error %d on %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPI reports whether err is, or wraps, an APIError.
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
