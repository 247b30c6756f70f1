package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNotFound         = errors.New("not found")
	ErrQuotaExceeded    = errors.New("vision quota exceeded")
	ErrTooLarge         = errors.New("payload too large")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUnavailable      = errors.New("service unavailable")
	ErrServer           = errors.New("server error")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shotsearch: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("shotsearch: HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto a package sentinel.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrInvalidRequest
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusUnsupportedMediaType:
		return ErrUnsupportedMedia
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrServer
	}
	return nil
}

// errorBody covers every error shape the API answers with.
type errorBody struct {
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

func (b errorBody) text() string {
	switch {
	case b.Error != "":
		return b.Error
	case len(b.Errors) > 0:
		return b.Errors[0]
	}
	return b.Message
}
