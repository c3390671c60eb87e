package epicmix

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Response represents the envelope of a proxy response.
type Response[T any] struct {
	Data T `json:"data"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// A response without data is rejected.
func (r *Response[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := decodeEnvelope(data, "response", &envelope); err != nil {
		return err
	}

	return json.Unmarshal(envelope.Data, &r.Data)
}

// APIError is returned when the API answers with a failure status.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Reason is the HTTP reason phrase.
	Reason string
	// Message is the server's error code, or the raw body when it is not JSON.
	// Empty when absent.
	Message string
	// Description is the server's error description. Empty when absent.
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "epicmix: %d %s", e.StatusCode, e.Reason)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, " (%s)", e.Description)
	}

	return b.String()
}

// newAPIError builds an APIError from a failed response and its body.
func newAPIError(resp *http.Response, body []byte) *APIError {
	e := &APIError{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = string(body)
		return e
	}

	e.Message = stringField(payload, "error")
	e.Description = stringField(payload, "error_description")

	return e
}

// reasonPhrase returns the reason phrase sent by the server, falling back to
// the standard text for the status code.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	return reason
}

func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
