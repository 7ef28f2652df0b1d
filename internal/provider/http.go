package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	maxResponseBytes  = 4 << 20
	maxErrorBodyChars = 200
)

// postJSON sends body to endpoint and returns the raw response of a 2xx answer.
// Any other status becomes a *TransportError.
func postJSON(
	ctx context.Context,
	client *http.Client,
	provider string,
	endpoint string,
	headers map[string]string,
	body any,
) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newTransportError(provider, resp.StatusCode, errorBodyMessage(respBody))
	}

	return respBody, nil
}

// errorBodyMessage pulls a readable message out of an error response body.
func errorBodyMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := upstreamErrorMessage(envelope.Error); msg != "" {
			return msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(msg) > maxErrorBodyChars {
		msg = string([]rune(msg)[:maxErrorBodyChars]) + "…"
	}

	return msg
}

// upstreamErrorMessage reads an "error" field that is either an object with a
// message or a plain string. Ollama uses the latter.
func upstreamErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && strings.TrimSpace(obj.Message) != "" {
		return strings.TrimSpace(obj.Message)
	}

	return strings.TrimSpace(string(raw))
}
