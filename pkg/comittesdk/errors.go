package comittesdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError represents a non-2xx response from the service. The client
// returns it for every failed call so callers can switch on StatusCode.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the error body's message, when one was present.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("comitte api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("comitte api: http %d: %s", e.StatusCode, e.Message)
}

// errorFromResponse drains the body and builds an APIError from it.
func errorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var e ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		apiErr.Message = e.Error
		return apiErr
	}

	var v ValidationErrorResponse
	if json.Unmarshal(body, &v) == nil && v.Message != "" {
		apiErr.Message = v.Message
	}

	return apiErr
}
