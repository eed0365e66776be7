// Package monitor reads the recent activity log published by the monitor service.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"overseer/internal/outputs"
)

// LogEntry is one supervisor cycle as recorded by the monitor.
type LogEntry struct {
	ID         string            `json:"id"`
	UserPrompt string            `json:"user_prompt"`
	Summary    string            `json:"summary"`
	AIOutputs  map[string]string `json:"ai_outputs"`
	Timestamp  string            `json:"timestamp"`
}

// UnmarshalJSON accepts numeric or string ids and coerces non-string
// output values the same way supervisor responses are coerced.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	type alias LogEntry
	var raw struct {
		alias
		ID        json.RawMessage `json:"id"`
		AIOutputs map[string]any  `json:"ai_outputs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	aiOutputs, err := outputs.Coerce(raw.AIOutputs)
	if err != nil {
		return fmt.Errorf("ai_outputs: %w", err)
	}
	*e = LogEntry(raw.alias)
	e.ID = rawID(raw.ID)
	e.AIOutputs = aiOutputs
	return nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// StatusError is returned for a non-2xx monitor response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
	// Now stamps the cache-busting query parameter.
	Now func() time.Time
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
		Now:     time.Now,
	}
}

// Logs fetches up to limit recent entries, newest first as served.
func (c *Client) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit < 1 {
		limit = 1
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("t", strconv.FormatInt(c.Now().UnixMilli(), 10))
	endpoint := c.BaseURL + "/logs?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("log feed request failed", "error", err)
		return nil, fmt.Errorf("log feed request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	var entries []LogEntry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding log feed: %w", err)
	}
	if entries == nil {
		entries = []LogEntry{}
	}
	c.Logger.Debug("log feed fetched", "entries", len(entries), "limit", limit)
	return entries, nil
}
