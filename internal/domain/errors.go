package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Error codes carried by APIError.
const (
	CodeNetwork   = "NETWORK_ERROR"
	CodeTimeout   = "TIMEOUT_ERROR"
	CodeUnknown   = "UNKNOWN_ERROR"
	CodeCancelled = "CANCELLED"
)

// HTTPCode builds the symbolic code used when the backend sends none.
func HTTPCode(status int) string {
	return "HTTP_" + strconv.Itoa(status)
}

// APIError is the single shape every backend failure is converted to.
// Status is 0 when no HTTP response was received.
type APIError struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Status  int             `json:"status,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsTimeout reports whether the failure was a client-side timeout.
func (e *APIError) IsTimeout() bool { return e.Code == CodeTimeout }

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates a missing, invalid or expired token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the route gate refused the request.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}
