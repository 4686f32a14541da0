package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError is returned when a backend responds with a non-2xx status.
// Message is the human-readable message from the error body, or the
// operation's fallback message when the body carries none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// AsAPIError unwraps err into an *APIError if there is one in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorBody mirrors the error shapes the backends return. The auth service
// uses "description", the rest use "message".
type errorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

// DecodeJSON consumes and closes the response body. On a 2xx status it
// decodes the body into v (v may be nil to discard it). Otherwise it
// attempts to parse an error body and returns an *APIError carrying the
// parsed message, or fallback when the body is missing or unparseable.
func DecodeJSON(resp *http.Response, v any, fallback string) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, fallback)
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// CheckStatus consumes and closes the response body, returning an
// *APIError for non-2xx statuses. Use for operations with no response
// payload of interest.
func CheckStatus(resp *http.Response, fallback string) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, fallback)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	msg := fallback

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			switch {
			case eb.Message != "":
				msg = eb.Message
			case eb.Description != "":
				msg = eb.Description
			}
		}
	}

	return &APIError{Status: resp.StatusCode, Message: msg}
}
