package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend. Body holds the raw response
// bytes so callers can probe it for a server-supplied message.
type Error struct {
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	if msg := e.BodyMessage(); msg != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// BodyMessage extracts a human-readable message from the response body:
// a plain string body, then a "message" field, then an "error" field.
// Returns "" when the body yields nothing usable.
func (e *Error) BodyMessage() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal(e.Body, &decoded); err != nil {
		// Not JSON: the server sent plain text.
		return body
	}

	switch value := decoded.(type) {
	case string:
		return value
	case map[string]any:
		if msg, ok := value["message"].(string); ok && msg != "" {
			return msg
		}
		if raw, ok := value["error"]; ok && raw != nil {
			return fmt.Sprint(raw)
		}
	}
	return ""
}

// ErrorMessage normalizes any failure into a single display string. Probe
// order: string response body, body "message" field, body "error" field,
// the error's own message, then the caller-supplied fallback. Every service
// failure goes through this one function so the presentation layer only
// ever renders its result.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.BodyMessage(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// IsUnauthorized reports a 401 response (session evicted by the client).
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsForbidden reports a 403 response (logged in but not allowed; the
// session survives).
func IsForbidden(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}
