package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedResponse is returned when a 2xx response lacks a field the
// caller depends on, such as the token of a login.
var ErrUnexpectedResponse = errors.New("unexpected response")

// ErrNotFound is returned when the API answers 2xx with an empty record.
var ErrNotFound = errors.New("not found")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// newHTTPError builds an HTTPError, preferring the "message" field of a JSON
// body, then "error", then the raw body text.
func newHTTPError(status int, body []byte) *HTTPError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &HTTPError{StatusCode: status, Message: msg}
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// ErrorMessage returns the server-supplied message carried by err, or
// fallback when err is not an HTTPError or the server sent none.
func ErrorMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	return fallback
}
