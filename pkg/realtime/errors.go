package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error conditions.
var (
	// ErrMissingClientID is returned when no client ID is configured.
	ErrMissingClientID = errors.New("realtime: client ID required")

	// ErrMissingServerURL is returned when no server URL is configured.
	ErrMissingServerURL = errors.New("realtime: server URL required")

	// ErrAlreadyConnected is returned by Connect when a session is already
	// connecting or connected.
	ErrAlreadyConnected = errors.New("realtime: already connected")

	// ErrMicrophoneUnavailable is returned when the capture source is
	// missing or fails to start.
	ErrMicrophoneUnavailable = errors.New("realtime: microphone unavailable")

	// ErrChannelClosed is reported when the signaling channel closes
	// before it ever opened.
	ErrChannelClosed = errors.New("realtime: signaling channel closed before open")

	// ErrICEGatherTimeout is returned when ICE gathering does not complete
	// within the configured deadline.
	ErrICEGatherTimeout = errors.New("realtime: timed out gathering ICE candidates")
)

// APIError represents an error response from the realtime service.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the service, or a fallback built
	// from the status when the body carried none.
	Message string

	// Hint is an optional remediation hint from the service.
	Hint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("realtime: API error %d: %s (%s)", e.StatusCode, e.Message, e.Hint)
	}
	return fmt.Sprintf("realtime: API error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsForbidden returns true if this is a permission error (HTTP 403).
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == 403
}

// IsNotFound returns true if the resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// parseAPIError builds an APIError from a non-success response. The body
// may be JSON with optional message and hint fields; anything else falls
// back to a message derived from the status.
func parseAPIError(statusCode int, body []byte, fallback string) *APIError {
	var payload struct {
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    payload.Message,
			Hint:       payload.Hint,
		}
	}

	if text := http.StatusText(statusCode); text != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("%s: %s", fallback, text),
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("%s (%d)", fallback, statusCode),
	}
}
