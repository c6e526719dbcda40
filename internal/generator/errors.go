package generator

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a non-2xx answer from the generation service.
// Detail is set when the body carried a string "detail" field.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("generation service error: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("generation service error: status %d", e.StatusCode)
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return apiErr
	}

	// validation errors carry a list here; only plain strings are shown to users
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		apiErr.Detail = detail
	}
	return apiErr
}

// DetailOf returns the service-provided detail message carried by err, if any.
func DetailOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}
