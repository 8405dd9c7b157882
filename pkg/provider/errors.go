package provider

import (
	"fmt"
	"unicode/utf8"
)

// maxErrorBody bounds how much of an unparseable error body is kept.
const maxErrorBody = 300

// StatusError is returned when a provider answers with a non-2xx status.
// Message is the provider's error message when the body carried one, else
// the raw (truncated) body.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func truncateBody(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	cut := maxErrorBody - 3
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut]) + "..."
}
