package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/quarkfin/platform-go/internal/domain"
)

const (
	msgNetwork   = "Network error - please check your internet connection"
	msgTimeout   = "Request timed out - please try again"
	msgCancelled = "Request cancelled"
	msgUnknown   = "An unexpected error occurred"
)

// Normalize converts any failure into the single APIError shape.
// It is idempotent: an *APIError anywhere in the chain is returned unchanged.
func Normalize(err error) *domain.APIError {
	if err == nil {
		return nil
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// Cancellation before timeout: a cancelled caller is not a slow server.
	if errors.Is(err, context.Canceled) {
		return &domain.APIError{Message: msgCancelled, Code: domain.CodeCancelled, Details: detail(err)}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.APIError{Message: msgTimeout, Code: domain.CodeTimeout, Details: detail(err)}
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &netErr) {
		return &domain.APIError{Message: msgNetwork, Code: domain.CodeNetwork, Details: detail(err)}
	}

	msg := err.Error()
	if msg == "" {
		msg = msgUnknown
	}
	return &domain.APIError{Message: msg, Code: domain.CodeUnknown, Details: detail(err)}
}

// FromResponse builds the APIError for a non-2xx response.
// Message and code come from the body when it carries them.
func FromResponse(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{
		Message: fmt.Sprintf("HTTP %d Error", status),
		Code:    domain.HTTPCode(status),
		Status:  status,
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if len(body) == 0 || !json.Valid(body) {
		return apiErr
	}
	apiErr.Details = json.RawMessage(body)
	if json.Unmarshal(body, &payload) != nil {
		return apiErr
	}

	if msg := errorText(payload.Error); msg != "" {
		apiErr.Message = msg
	} else if payload.Message != "" {
		apiErr.Message = payload.Message
	}
	if payload.Code != "" {
		apiErr.Code = payload.Code
	}
	return apiErr
}

// errorText reads an "error" field that is usually a string but is sometimes
// an object with its own message.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}

func detail(err error) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return b
}
