package client

import (
	"errors"
	"fmt"
)

// Sentinel errors. An *APIError matches the sentinel of its class with
// errors.Is.
var (
	// ErrNetwork matches transport failures (DNS, connect, timeout, reset).
	ErrNetwork = errors.New("network error")

	// ErrNotFound matches a 404 from the photo API.
	ErrNotFound = errors.New("photo not found")

	// ErrDecode matches response bodies that are not the expected JSON shape.
	ErrDecode = errors.New("decode error")

	// ErrUnexpectedStatus matches any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidArgument is returned before any I/O for a bad page, limit or id.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorClass represents a classification of photo API failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassNotFound represents 404 responses.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassDecode represents malformed response bodies.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassClient represents other 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"
)

// APIError is the error returned by every failed photo API call.
type APIError struct {
	Class      ErrorClass
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("photo API %s error", e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Endpoint != "" {
		msg += " on " + e.Endpoint
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error class.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Class == ErrorClassNetwork
	case ErrNotFound:
		return e.Class == ErrorClassNotFound
	case ErrDecode:
		return e.Class == ErrorClassDecode
	case ErrUnexpectedStatus:
		return e.Class == ErrorClassClient || e.Class == ErrorClassServer
	}
	return false
}

// ClassOf returns the class of an *APIError anywhere in err's chain, or ""
// when err is nil or did not come from the photo API.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ""
}
