package kai

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a control-plane error returned by the Kai backend. The
// body carries a machine code, a human message and an optional cause.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Cause      string `json:"cause,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("kai: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("kai: %s (HTTP %d)", e.Message, e.StatusCode)
}

// AuthenticationError is returned for HTTP 401.
type AuthenticationError struct {
	APIError
}

// ForbiddenError is returned for HTTP 403.
type ForbiddenError struct {
	APIError
}

// NotFoundError is returned for HTTP 404.
type NotFoundError struct {
	APIError
}

// RateLimitError is returned for HTTP 429.
type RateLimitError struct {
	APIError
}

// BadRequestError is returned for HTTP 400.
type BadRequestError struct {
	APIError
}

// ConnectionError reports a transport-level failure reaching the
// backend, distinct from application errors the backend returned.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("kai: connection failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// classifyResponse maps an HTTP error status and body into the error
// taxonomy. The body is expected to be {code, message, cause?}; a body
// that does not decode still yields a usable error carrying the status.
func classifyResponse(statusCode int, body []byte) error {
	apiErr := APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
		if len(body) > 0 {
			apiErr.Cause = string(body)
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return &AuthenticationError{apiErr}
	case http.StatusForbidden:
		return &ForbiddenError{apiErr}
	case http.StatusNotFound:
		return &NotFoundError{apiErr}
	case http.StatusTooManyRequests:
		return &RateLimitError{apiErr}
	case http.StatusBadRequest:
		return &BadRequestError{apiErr}
	default:
		return &apiErr
	}
}
