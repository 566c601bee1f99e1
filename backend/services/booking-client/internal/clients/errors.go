package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrServiceUnavailable is returned while the circuit breaker rejects calls.
	ErrServiceUnavailable = errors.New("booking api unavailable")
	// ErrTokenExpired is returned before any request when the bearer token has expired.
	ErrTokenExpired = errors.New("session token expired")
)

// APIError is a non-2xx answer from the booking server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("booking api: status %d: %s", e.StatusCode, e.Message)
}

// Conflict reports whether the server refused the write because the resource is taken.
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

// Malformed reports whether the server rejected the request as invalid.
func (e *APIError) Malformed() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

// IsConflict reports whether err carries a 409 from the server.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Conflict()
}

// IsMalformed reports whether err carries a validation rejection from the server.
func IsMalformed(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Malformed()
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	} else {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
