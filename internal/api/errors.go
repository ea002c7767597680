package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the task API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the server-supplied explanation taken from the body's
	// "message" field, else its "error" field. It may be empty.
	Message string

	// MessageField is the body's "message" field alone.
	MessageField string

	Body string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
}

// errorBody is the error payload shape of the API. "message" may be a
// string or a list of strings (validation errors).
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       string(body),
	}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		e.MessageField = rawText(eb.Message)
		e.Message = e.MessageField
		if e.Message == "" {
			e.Message = rawText(eb.Error)
		}
	}
	return e
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	return ""
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// MessageOr returns the server-supplied message carried by err, or
// fallback when the server gave none (including transport failures).
func MessageOr(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// MessageFieldOr is like MessageOr but only trusts the body's "message"
// field. Task endpoints report through it alone.
func MessageFieldOr(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.MessageField != "" {
		return apiErr.MessageField
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
