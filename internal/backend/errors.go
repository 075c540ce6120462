package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxPlainDetailRunes bounds how much of a text/plain error body is shown.
const maxPlainDetailRunes = 200

var (
	ErrUnavailable          = errors.New("backend unreachable")
	ErrUnrecognizedResponse = errors.New("unrecognized response shape")
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Detail)
}

// Unauthorized reports an expired or rejected token.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsUnauthorized reports whether err carries a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Unauthorized()
}

// errorDetail extracts a display message from an error body: a string
// detail, message or error field, then a bare JSON string, then a short
// text/plain body, then the status text. HTML error pages are never shown.
func errorDetail(status int, contentType string, body []byte) string {
	fallback := fmt.Sprintf("Error %d", status)
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}

	if strings.Contains(contentType, "application/json") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err == nil {
			for _, key := range []string{"detail", "message", "error"} {
				var s string
				if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
					return s
				}
			}
			return fallback
		}
		var s string
		if err := json.Unmarshal(body, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
		return fallback
	}
	if strings.HasPrefix(contentType, "text/plain") && utf8.RuneCountInString(text) <= maxPlainDetailRunes {
		return text
	}
	if statusText := http.StatusText(status); statusText != "" {
		return statusText
	}
	return fallback
}
