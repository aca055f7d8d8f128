package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies how a request failed.
type Kind string

const (
	// KindResponse means the server answered with a non-2xx status.
	KindResponse Kind = "response"
	// KindNetwork means the request was sent but no response arrived.
	KindNetwork Kind = "network"
	// KindSetup means the request could not be built.
	KindSetup Kind = "setup"
)

// Error is returned by every failed Client call.
type Error struct {
	Kind   Kind
	Method string
	Path   string
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindResponse:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message())
	default:
		return fmt.Sprintf("%s %s: %s error: %v", e.Method, e.Path, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message extracts the server-provided message from a response error body. The
// backend answers {"error": "..."}; "detail" and "message" keys are also
// recognised. Plain text bodies are returned trimmed.
func (e *Error) Message() string {
	if e.Kind != KindResponse {
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
	for _, key := range []string{"error", "detail", "message"} {
		if v := gjson.GetBytes(e.Body, key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if text := strings.TrimSpace(string(e.Body)); text != "" && !gjson.ValidBytes(e.Body) {
		return text
	}
	return http.StatusText(e.Status)
}

// KindOf reports the failure kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Kind
	}
	return ""
}

// StatusOf reports the HTTP status of a response error, or 0.
func StatusOf(err error) int {
	var herr *Error
	if errors.As(err, &herr) && herr.Kind == KindResponse {
		return herr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
