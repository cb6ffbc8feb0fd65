package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tatianab/text-adventure/internal/models"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.5-flash"

	fallbackMessage     = "API request failed"
	noCandidatesMessage = "no response candidates from Gemini"
)

// ProviderError is returned for every failed completion. Error() is the
// provider's own message when it sent one.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Client calls the generateContent REST endpoint directly.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates a REST client. A zero timeout means requests may wait
// forever on an unresponsive endpoint.
func NewClient(endpoint, model string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete sends the whole history and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, apiKey string, history []models.Message) (string, error) {
	body, err := BuildRequest(history)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(apiKey), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Message: redact(err.Error(), apiKey), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}

	var parsed generateContentResponse
	decodeErr := json.Unmarshal(data, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fallbackMessage
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response from Gemini: " + decodeErr.Error(),
			Err:        decodeErr,
		}
	}

	if len(parsed.Candidates) == 0 {
		msg := noCandidatesMessage
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "no content returned from Gemini"}
	}
	return parts[0].Text, nil
}

func (c *Client) url(apiKey string) string {
	q := url.Values{}
	q.Set("key", apiKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.endpoint, url.PathEscape(c.model), q.Encode())
}

// redact keeps the key out of transport errors, which quote the request URL.
func redact(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(apiKey), "REDACTED")
	return strings.ReplaceAll(s, apiKey, "REDACTED")
}
