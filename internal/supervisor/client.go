// Package supervisor submits operator prompts to the supervisor service.
package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"overseer/internal/outputs"
)

const requestIDHeader = "X-Request-ID"

// StatusError is returned for a non-2xx supervisor response.
type StatusError struct {
	StatusCode int
	// Message is the "error" field of the response body, if one was present.
	Message string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Outputs is the per-agent result mapping returned by a synchronous submission.
type Outputs map[string]string

// Keys returns the mapping's keys in sorted order.
func (o Outputs) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lines renders one "key: value" line per entry, sorted by key.
func (o Outputs) Lines() []string {
	lines := make([]string, 0, len(o))
	for _, k := range o.Keys() {
		lines = append(lines, k+": "+o[k])
	}
	return lines
}

func (o Outputs) String() string {
	return strings.Join(o.Lines(), "\n")
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    httpClient,
		Logger:  logger,
	}
}

// Submit posts prompt and discards the response body. Any 2xx is success.
func (c *Client) Submit(ctx context.Context, prompt string) error {
	res, err := c.post(ctx, prompt)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode/100 != 2 {
		return &StatusError{StatusCode: res.StatusCode}
	}
	return nil
}

// Ask posts prompt and decodes the synchronous result mapping. On a non-2xx
// response it tries to surface the body's "error" field.
func (c *Client) Ask(ctx context.Context, prompt string) (Outputs, error) {
	res, err := c.post(ctx, prompt)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading supervisor response: %w", err)
	}
	if res.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: res.StatusCode, Message: errorField(body)}
	}
	return decodeOutputs(body)
}

func (c *Client) post(ctx context.Context, prompt string) (*http.Response, error) {
	payload, err := json.Marshal(struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	c.Logger.Debug("submitting prompt", "url", c.BaseURL, "request_id", requestID, "chars", len(prompt))
	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("supervisor request failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("supervisor request failed: %w", err)
	}
	c.Logger.Debug("supervisor responded", "request_id", requestID, "status", res.StatusCode)
	return res, nil
}

func errorField(body []byte) string {
	var parsed struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	switch v := parsed.Error.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}

// decodeOutputs accepts any JSON object and coerces its values to strings.
func decodeOutputs(body []byte) (Outputs, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("supervisor returned non-object payload: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("supervisor returned non-object payload")
	}
	flat, err := outputs.Coerce(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding supervisor outputs: %w", err)
	}
	return Outputs(flat), nil
}
