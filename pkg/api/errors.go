package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable indicates the backend could not be contacted at all.
	ErrUnreachable = errors.New("cannot reach the lending server, check your network connection")

	// ErrNotAuthenticated indicates no credential is stored.
	ErrNotAuthenticated = errors.New("not authenticated: no credential stored")

	// ErrEmptyToken indicates a successful login response carried no token.
	ErrEmptyToken = errors.New("login response did not contain a token")
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	// Message is the server-supplied message, or the status text when the
	// body carried none.
	Message string
	Body    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Error wraps a failed client operation with its name.
type Error struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Message returns the text a user should see for err: the server message for
// HTTP errors, the connectivity message for transport failures, and the
// plain error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	if errors.Is(err, ErrUnreachable) {
		return ErrUnreachable.Error()
	}
	return err.Error()
}

// IsAuthError returns true if the error is an authentication/authorization error.
func IsAuthError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
	}
	return errors.Is(err, ErrNotAuthenticated)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
