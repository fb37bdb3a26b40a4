package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the inventory API. The API reports
// failures as {"detail": "..."}; Detail carries that message when present.
type Error struct {
	StatusCode int
	Operation  string
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %s failed with status %d: %s", e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: %s failed with status %d", e.Operation, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401/403 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// newError builds an Error from a raw response body, extracting the
// "detail" field when the body is the API's standard error shape.
func newError(operation string, status int, raw []byte) *Error {
	e := &Error{StatusCode: status, Operation: operation}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			e.Detail = s
		} else {
			// Validation errors arrive as a structured list; keep them raw.
			e.Detail = string(body.Detail)
		}
	}

	return e
}
