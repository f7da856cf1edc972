package gateway

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrUnauthorized is matched by any error caused by a 401 from the rental API.
// The token has already been cleared when it is returned.
var ErrUnauthorized = errors.New("gateway: unauthorized")

// ErrNoToken is returned by token sources that hold no usable token.
// It matches ErrUnauthorized so callers handle both the same way.
var ErrNoToken = errors.Wrap(ErrUnauthorized, "no session token")

// FieldError is one validation failure reported by the rental API
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a non-2xx answer from the rental API
type Error struct {
	Status    int
	Operation string
	Message   string
	Errors    []FieldError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Operation, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Operation, e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 answers
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the user-facing message carried by err, if any.
// Field errors are preferred over the generic message when present.
func Message(err error) (string, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "" {
		return apiErr.Errors[0].Message, true
	}
	return apiErr.Message, apiErr.Message != ""
}

// MessageOr returns the gateway message of err or fallback
func MessageOr(err error, fallback string) string {
	if msg, ok := Message(err); ok {
		return msg
	}
	return fallback
}
