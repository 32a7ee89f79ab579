// Package errors defines common error types used throughout the wrapblox client.
package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ConfigurationError indicates a programming or configuration mistake, such as
// referencing an API group that is not in the endpoint table. These are never retried.
type ConfigurationError struct {
	// Field contains the name of the offending setting or argument
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// StateError indicates an operation was attempted when the client is not ready,
// for example reading the authenticated user before Login.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// APIErrorEntry is one element of the upstream {"errors":[...]} error body.
type APIErrorEntry struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RequestError is returned for any HTTP response with a non-2xx status.
// The body is retained but not parsed until Errors or Format is called.
type RequestError struct {
	// Method is the HTTP method of the failed call
	Method string
	// URL is the fully composed URL that was requested
	URL string
	// StatusCode is the HTTP status code
	StatusCode int
	// Status is the HTTP status text (e.g. "404 Not Found")
	Status string
	// Response is the raw response. Its body has already been drained; use Body.
	Response *http.Response
	// Body holds the raw response body bytes
	Body []byte
}

func (e *RequestError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("request %s %s failed: %s", e.Method, e.URL, status)
	}
	return fmt.Sprintf("request failed: %s", status)
}

// Errors decodes the structured error list from the response body.
// A body without an "errors" array yields an empty slice and no error.
func (e *RequestError) Errors() ([]APIErrorEntry, error) {
	trimmed := bytes.TrimSpace(e.Body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var envelope struct {
		Errors []APIErrorEntry `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &ParseError{Operation: "decode error body", Err: err}
	}
	return envelope.Errors, nil
}

// Format renders the structured error list as one "code: message" line per entry.
// When the body carries no entries, the status line is returned instead.
func (e *RequestError) Format() (string, error) {
	entries, err := e.Errors()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return e.Error(), nil
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d: %s", entry.Code, entry.Message))
	}
	return strings.Join(lines, "\n"), nil
}

// IsRateLimited reports whether the upstream answered 429 Too Many Requests.
func (e *RequestError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether the upstream answered 404 Not Found.
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ParseError indicates a problem parsing the API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ClientError wraps a failure of a higher-level client operation while
// keeping the underlying error reachable through errors.As.
type ClientError struct {
	// Operation describes what the client was trying to do
	Operation string
	// Err contains the underlying error
	Err error
}

func (e *ClientError) Error() string {
	if e.Operation == "" {
		if e.Err == nil {
			return "client error"
		}
		return e.Err.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("client error during %s", e.Operation)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err wraps a 429 RequestError.
func IsRateLimited(err error) bool {
	var reqErr *RequestError
	return stderrors.As(err, &reqErr) && reqErr.IsRateLimited()
}

// IsNotFound reports whether err wraps a 404 RequestError.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return stderrors.As(err, &reqErr) && reqErr.IsNotFound()
}

// StatusCode extracts the HTTP status from a wrapped RequestError, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}
