package backend

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for the request client
var (
	ErrTransport  = goerr.New("failed to reach backend")
	ErrDecode     = goerr.New("failed to decode backend response")
	ErrInvalidURL = goerr.New("invalid backend URL")
)

// Context keys for error values
const (
	MethodKey    = "method"
	PathKey      = "path"
	StatusKey    = "status"
	RequestIDKey = "request_id"
	BaseURLKey   = "base_url"
	ActionIDKey  = "action_id"
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Backend error: %d", e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a
// service failure.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Message turns a request failure into the text shown to the operator. Service
// failures embed the status code; transport failures are generic.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	if errors.Is(err, ErrTransport) {
		return ErrTransport.Error()
	}
	if errors.Is(err, ErrDecode) {
		return ErrDecode.Error()
	}
	return "Something went wrong"
}
