package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4096

// Error is returned when the gateway answers with a non-success status.
// Nothing has been decoded when an Error is returned.
type Error struct {
	StatusCode int    // HTTP status code
	Message    string // Human-readable message from the response body
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports a missing or invalid bearer token (HTTP 401).
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsQuotaExhausted reports that the caller ran out of AI credits (HTTP 402).
func (e *Error) IsQuotaExhausted() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// IsRateLimited reports a rate limit response (HTTP 429).
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// readError builds an Error from a failed response. It understands both
// {"error":"..."} and the OpenAI style {"error":{"message":"..."}}; any
// other body is used verbatim.
func readError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var wire struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && len(wire.Error) > 0 {
		var message string
		if json.Unmarshal(wire.Error, &message) == nil && message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: message}
		}
		var detail struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(wire.Error, &detail) == nil && detail.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: detail.Message}
		}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Message: message}
}
