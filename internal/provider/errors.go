package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var errEmptyPost = errors.New("post text is empty")

// UnknownProviderError means the settings name no known backend.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q", e.Provider)
}

// TransportError is a non-2xx answer from the backend.
type TransportError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
}

func newTransportError(provider string, statusCode int, message string) *TransportError {
	return &TransportError{
		Provider:   provider,
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Message:    message,
	}
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s API error: %d %s", e.Provider, e.StatusCode, e.Status)
	if hint := e.Hint(); hint != "" {
		msg += " (" + hint + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

// Hint gives remediation text for well-known status codes.
func (e *TransportError) Hint() string {
	switch {
	case e.IsAuth():
		return "authentication failed, check your API key"
	case e.StatusCode == http.StatusTooManyRequests:
		return "rate limited, try again later"
	case e.StatusCode == http.StatusNotFound:
		return "model or endpoint not found"
	case e.StatusCode >= http.StatusInternalServerError:
		return "provider is unavailable"
	default:
		return ""
	}
}

func (e *TransportError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// MalformedPayloadError is a response body without the expected shape.
type MalformedPayloadError struct {
	Provider string
	Reason   string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %s", e.Provider, e.Reason)
}

// EmptyResponseError is a well-formed response with nothing to summarize in it.
type EmptyResponseError struct {
	Provider string
	Model    string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s model %q returned an empty response", e.Provider, e.Model)
}

// TruncatedResponseError is an empty response that hit the output token limit.
type TruncatedResponseError struct {
	Provider  string
	MaxTokens int64
}

func (e *TruncatedResponseError) Error() string {
	return fmt.Sprintf("%s response cut off at %d tokens, increase the token limit", e.Provider, e.MaxTokens)
}

// UpstreamReportedError carries an error object the backend put in its response body.
type UpstreamReportedError struct {
	Provider string
	Message  string
}

func (e *UpstreamReportedError) Error() string {
	return fmt.Sprintf("%s reported an error: %s", e.Provider, e.Message)
}
